package handlers

import (
	"io"
	"net/http"
	"strconv"

	"cropconnect/middleware"
	"cropconnect/models"
	"cropconnect/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// getLogger returns the request logger set by middleware.RequestLogger, or the global one.
func getLogger(c *gin.Context) *zap.Logger {
	if l, ok := c.Get("logger"); ok {
		if logger, ok := l.(*zap.Logger); ok {
			return logger
		}
	}
	return utils.GetLogger()
}

// respond writes payload with success set.
func respond(c *gin.Context, status int, payload gin.H) {
	if payload == nil {
		payload = gin.H{}
	}
	payload["success"] = true
	c.JSON(status, payload)
}

// fail maps a service error onto the error envelope.
func fail(c *gin.Context, err error) {
	if utils.KindOf(err) != utils.KindInternal {
		getLogger(c).Debug("request rejected",
			zap.String("path", c.FullPath()),
			zap.String("kind", string(utils.KindOf(err))),
			zap.String("reason", err.Error()))
	}
	utils.RespondError(c, err)
}

// bind decodes the JSON body into dst, answering 400 on failure.
func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return false
	}
	return true
}

// actor returns the authenticated caller; routes using it sit behind middleware.Auth.
func actor(c *gin.Context) (models.Actor, bool) {
	a, ok := middleware.Actor(c)
	if !ok {
		utils.JSONError(c, http.StatusUnauthorized, "Authentication required")
	}
	return a, ok
}

// formImage opens the uploaded "image" field.
func formImage(c *gin.Context) (io.ReadCloser, bool) {
	header, err := c.FormFile("image")
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "image file is required")
		return nil, false
	}
	file, err := header.Open()
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "unable to read image")
		return nil, false
	}
	return file, true
}

func queryInt(c *gin.Context, key string, def int64) int64 {
	v, err := strconv.ParseInt(c.Query(key), 10, 64)
	if err != nil {
		return def
	}
	return v
}

func queryBool(c *gin.Context, key string) *bool {
	v, err := strconv.ParseBool(c.Query(key))
	if err != nil {
		return nil
	}
	return &v
}
