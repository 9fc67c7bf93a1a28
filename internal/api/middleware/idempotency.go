package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/elfabitto/sistema-de-atendimento/internal/constant"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	IdempotencyHeader = "Idempotency-Key"
	inFlightMarker    = "in-flight"
)

type IdempotencyMiddleware struct {
	redisClient *redis.Client
	ttl         time.Duration
	logger      *logrus.Logger
}

type storedResponse struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

func NewIdempotencyMiddleware(redisClient *redis.Client, ttl time.Duration, logger *logrus.Logger) *IdempotencyMiddleware {
	if ttl <= 0 {
		ttl = constant.RedisIdempotencyTTL
	}
	return &IdempotencyMiddleware{
		redisClient: redisClient,
		ttl:         ttl,
		logger:      logger,
	}
}

type bodyRecorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Handle replays the first completed response for a repeated
// Idempotency-Key. Requests without the header pass through untouched.
func (i *IdempotencyMiddleware) Handle(c *gin.Context) {
	key := c.GetHeader(IdempotencyHeader)
	if key == "" {
		c.Next()
		return
	}
	redisKey := fmt.Sprintf("%s%d:%s", constant.RedisIdempotencyPrefix, c.GetInt64(constant.UserIdKey), key)

	claimed, err := i.redisClient.SetNX(c, redisKey, inFlightMarker, i.ttl).Result()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": err.Error()})
		return
	}

	if !claimed {
		i.replay(c, redisKey)
		return
	}

	rec := &bodyRecorder{ResponseWriter: c.Writer}
	c.Writer = rec
	c.Next()

	status := rec.Status()
	if status >= http.StatusInternalServerError {
		// let the client retry with the same key
		if err := i.redisClient.Del(c, redisKey).Err(); err != nil {
			i.logger.WithError(err).WithField("key", redisKey).Error("failed to release idempotency key")
		}
		return
	}

	payload, err := json.Marshal(storedResponse{Status: status, Body: rec.body.Bytes()})
	if err != nil {
		i.logger.WithError(err).Error("failed to encode idempotent response")
		return
	}
	if err := i.redisClient.Set(c, redisKey, payload, i.ttl).Err(); err != nil {
		i.logger.WithError(err).WithField("key", redisKey).Error("failed to store idempotent response")
	}
}

func (i *IdempotencyMiddleware) replay(c *gin.Context, redisKey string) {
	raw, err := i.redisClient.Get(c, redisKey).Result()
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": err.Error()})
		return
	}

	if raw == inFlightMarker {
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{
			"code":    http.StatusConflict,
			"message": "a request with this idempotency key is still in progress",
		})
		return
	}

	var stored storedResponse
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"code": http.StatusInternalServerError, "message": err.Error()})
		return
	}

	c.Header("Idempotent-Replayed", "true")
	c.Data(stored.Status, "application/json; charset=utf-8", stored.Body)
	c.Abort()
}
