package dto

import "time"

// ImportReportResponse resumen de una importación ejecutada a demanda.
type ImportReportResponse struct {
	RunID      string    `json:"run_id"`
	Batches    int       `json:"batches"`
	Rows       int       `json:"rows"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}
