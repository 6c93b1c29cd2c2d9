package model

type ErrorResponse struct {
	Error string `json:"error"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

type PingResponse struct {
	Message string `json:"message"`
}

type IngestResponse struct {
	Status string `json:"status"`
	Msg    string `json:"msg"`
	ID     string `json:"id"`
}

type AlertListEnvelope struct {
	Status string  `json:"status"`
	Data   []Alert `json:"data"`
}

type AlertDetailEnvelope struct {
	Status string `json:"status"`
	Data   *Alert `json:"data"`
}

type AlertStatsEnvelope struct {
	Status string     `json:"status"`
	Data   AlertStats `json:"data"`
}
