package middleware

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

const CtxRequestIDKey = "request_id" // string

// リクエストIDを振って、1リクエスト1行のログを出す。
// 受け取ったX-Request-IDがあればそれを使う。
func RequestLog(log logrus.FieldLogger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			reqID := c.Request().Header.Get(echo.HeaderXRequestID)
			if reqID == "" {
				reqID = uuid.NewString()
			}
			c.Set(CtxRequestIDKey, reqID)
			c.Response().Header().Set(echo.HeaderXRequestID, reqID)

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			entry := log.WithFields(logrus.Fields{
				"request_id": reqID,
				"method":     c.Request().Method,
				"path":       c.Path(),
				"status":     c.Response().Status,
				"latency_ms": time.Since(start).Milliseconds(),
			})
			if sub, ok := c.Get(CtxSubjectKey).(string); ok {
				entry = entry.WithField("subject", sub)
			}
			if err != nil {
				entry.WithError(err).Warn("request failed")
				return nil
			}
			entry.Info("request")
			return nil
		}
	}
}
