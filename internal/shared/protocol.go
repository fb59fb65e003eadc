package shared

type ItemCreate struct {
	Name    string  `json:"name"`
	Price   float64 `json:"price"`
	InStock *bool   `json:"in_stock,omitempty"` // absent means true
}

// Stock resolves the in_stock default.
func (c ItemCreate) Stock() bool {
	if c.InStock == nil {
		return true
	}
	return *c.InStock
}

type Item struct {
	ID      int64   `json:"id" yaml:"id"`
	Name    string  `json:"name" yaml:"name"`
	Price   float64 `json:"price" yaml:"price"`
	InStock bool    `json:"in_stock" yaml:"in_stock"`
}

type DivideRequest struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
}

type DivideResponse struct {
	Result float64 `json:"result" yaml:"result"`
}

// ConfigView is the public projection of Config. It has no field for the API key.
type ConfigView struct {
	AppName     string `json:"app_name" yaml:"app_name"`
	Environment string `json:"environment" yaml:"environment"`
}

type HealthResponse struct {
	Status      string `json:"status" yaml:"status"`
	AppName     string `json:"app_name" yaml:"app_name"`
	Environment string `json:"environment" yaml:"environment"`
	Debug       bool   `json:"debug" yaml:"debug"`
	Items       int    `json:"items" yaml:"items"`
}

type SecureDataResponse struct {
	SecretData string `json:"secret_data" yaml:"secret_data"`
}

type StructuredError struct {
	ErrorType string      `json:"error_type" yaml:"error_type"`
	Message   string      `json:"message" yaml:"message"`
	Details   []Violation `json:"details,omitempty" yaml:"details,omitempty"`
}

// APIKeyHeader is the header checked by the secure gate.
const APIKeyHeader = "X-API-Key"
