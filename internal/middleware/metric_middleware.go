package middleware

import (
	"github.com/gin-gonic/gin"
	ginprometheus "github.com/zsais/go-gin-prometheus"
)

// SetupPrometheus attaches request metrics to the engine and exposes them on
// /metrics. Series are emitted under the notehive subsystem.
func SetupPrometheus(r *gin.Engine) {
	p := ginprometheus.NewPrometheus("notehive")

	p.Use(r)
}
