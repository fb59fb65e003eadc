package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"

	"stockroom/internal/shared"
)

// schemaOf reuses the validator's JSON schema so the document cannot drift
// from what requests are checked against.
func schemaOf(s *Schema) (*openapi3.Schema, error) {
	var out openapi3.Schema
	if err := json.Unmarshal(s.Raw, &out); err != nil {
		return nil, fmt.Errorf("openapi schema %s: %w", s.Name, err)
	}
	return &out, nil
}

func itemSchema() *openapi3.Schema {
	s := openapi3.NewObjectSchema().
		WithProperty("id", openapi3.NewInt64Schema()).
		WithProperty("name", openapi3.NewStringSchema()).
		WithProperty("price", openapi3.NewFloat64Schema()).
		WithProperty("in_stock", openapi3.NewBoolSchema())
	s.Required = []string{"id", "name", "price", "in_stock"}
	return s
}

func errorSchema() *openapi3.Schema {
	violation := openapi3.NewObjectSchema().
		WithProperty("field", openapi3.NewStringSchema()).
		WithProperty("location", openapi3.NewStringSchema()).
		WithProperty("constraint", openapi3.NewStringSchema()).
		WithProperty("message", openapi3.NewStringSchema())
	s := openapi3.NewObjectSchema().
		WithProperty("error_type", openapi3.NewStringSchema().WithEnum(
			shared.ErrorTypeValidation,
			shared.ErrorTypeNotFound,
			shared.ErrorTypeUnauthorized,
			shared.ErrorTypeDivisionByZero,
			shared.ErrorTypeRateLimited,
			shared.ErrorTypeMethodNotAllowed,
			shared.ErrorTypeInternal,
		)).
		WithProperty("message", openapi3.NewStringSchema()).
		WithProperty("details", openapi3.NewArraySchema().WithItems(violation))
	s.Required = []string{"error_type", "message"}
	return s
}

func jsonResponse(desc string, s *openapi3.Schema) *openapi3.ResponseRef {
	return &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription(desc).WithJSONSchema(s)}
}

func jsonBody(s *openapi3.Schema) *openapi3.RequestBodyRef {
	return &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchema(s)}
}

func operation(id, summary string, responses ...openapi3.NewResponsesOption) *openapi3.Operation {
	op := openapi3.NewOperation()
	op.OperationID = id
	op.Summary = summary
	op.Responses = openapi3.NewResponses(responses...)
	return op
}

// BuildOpenAPI describes every route Routes registers.
func BuildOpenAPI(cfg *shared.Config, v *Validator) (*openapi3.T, error) {
	itemCreate, err := schemaOf(v.ItemCreate)
	if err != nil {
		return nil, err
	}
	divide, err := schemaOf(v.Divide)
	if err != nil {
		return nil, err
	}

	item := itemSchema()
	errBody := errorSchema()
	idParam := &openapi3.ParameterRef{Value: openapi3.NewPathParameter("id").WithSchema(openapi3.NewInt64Schema())}
	with := openapi3.WithStatus
	errResp := func(code int, desc string) openapi3.NewResponsesOption {
		return with(code, jsonResponse(desc, errBody))
	}

	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:   cfg.AppName,
			Version: "1.0.0",
		},
		Paths: openapi3.NewPaths(),
	}

	doc.AddOperation("/config", http.MethodGet, operation("getConfig", "Public configuration",
		with(http.StatusOK, jsonResponse("Application name and environment",
			openapi3.NewObjectSchema().
				WithProperty("app_name", openapi3.NewStringSchema()).
				WithProperty("environment", openapi3.NewStringSchema()))),
	))

	secure := operation("getSecureData", "Data behind the API key",
		with(http.StatusOK, jsonResponse("Access granted",
			openapi3.NewObjectSchema().WithProperty("secret_data", openapi3.NewStringSchema()))),
		errResp(http.StatusUnauthorized, "Missing or wrong API key"),
	)
	secure.Parameters = openapi3.Parameters{{Value: openapi3.NewHeaderParameter(shared.APIKeyHeader).
		WithRequired(true).WithSchema(openapi3.NewStringSchema())}}
	doc.AddOperation("/secure-data", http.MethodGet, secure)

	doc.AddOperation("/health", http.MethodGet, operation("getHealth", "Liveness",
		with(http.StatusOK, jsonResponse("Service is up",
			openapi3.NewObjectSchema().
				WithProperty("status", openapi3.NewStringSchema()).
				WithProperty("app_name", openapi3.NewStringSchema()).
				WithProperty("environment", openapi3.NewStringSchema()).
				WithProperty("debug", openapi3.NewBoolSchema()).
				WithProperty("items", openapi3.NewIntegerSchema()))),
	))

	create := operation("createItem", "Create an item",
		with(http.StatusCreated, jsonResponse("Created item", item)),
		errResp(http.StatusBadRequest, "Validation failed"),
	)
	create.RequestBody = jsonBody(itemCreate)
	doc.AddOperation("/items", http.MethodPost, create)

	doc.AddOperation("/items", http.MethodGet, operation("listItems", "List items in creation order",
		with(http.StatusOK, jsonResponse("All items", openapi3.NewArraySchema().WithItems(item))),
	))

	get := operation("getItem", "Fetch one item",
		with(http.StatusOK, jsonResponse("The item", item)),
		errResp(http.StatusBadRequest, "Malformed id"),
		errResp(http.StatusNotFound, "No such item"),
	)
	get.Parameters = openapi3.Parameters{idParam}
	doc.AddOperation("/items/{id}", http.MethodGet, get)

	del := operation("deleteItem", "Delete one item",
		with(http.StatusNoContent, &openapi3.ResponseRef{Value: openapi3.NewResponse().WithDescription("Deleted")}),
		errResp(http.StatusBadRequest, "Malformed id"),
		errResp(http.StatusNotFound, "No such item"),
	)
	del.Parameters = openapi3.Parameters{idParam}
	doc.AddOperation("/items/{id}", http.MethodDelete, del)

	div := operation("divide", "Divide a by b",
		with(http.StatusOK, jsonResponse("Quotient",
			openapi3.NewObjectSchema().WithProperty("result", openapi3.NewFloat64Schema()))),
		errResp(http.StatusBadRequest, "Validation failed or b is zero"),
	)
	div.RequestBody = jsonBody(divide)
	doc.AddOperation("/math/divide", http.MethodPost, div)

	return doc, nil
}
