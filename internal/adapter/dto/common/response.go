package common

// MessageResponse is returned by endpoints with nothing else to report
type MessageResponse struct {
	Message string `json:"message"`
}

// RootResponse is the API banner
type RootResponse struct {
	Message string `json:"message"`
}

// HealthResponse reports service liveness
type HealthResponse struct {
	Status      string `json:"status"`
	Environment string `json:"environment"`
}
