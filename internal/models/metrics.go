package models

import "time"

// MetricsSnapshot is a point-in-time summary of process counters.
type MetricsSnapshot struct {
	RequestsTotal            uint64    `json:"requisicoes"`
	AverageRequestDurationMs float64   `json:"duracaoMediaMs"`
	LoginSuccesses           uint64    `json:"loginsComSucesso"`
	LoginFailures            uint64    `json:"loginsRecusados"`
	TokenRejections          uint64    `json:"tokensRecusados"`
	RateLimited              uint64    `json:"requisicoesLimitadas"`
	Goroutines               int       `json:"goroutines"`
	UptimeSeconds            int64     `json:"uptimeSegundos"`
	GeneratedAt              time.Time `json:"geradoEm"`
}
