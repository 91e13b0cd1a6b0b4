// Package httputils provides HTTP utility functions.
package httputils

import (
	"github.com/gin-gonic/gin"

	"github.com/kart-io/insight/pkg/errors"
	"github.com/kart-io/insight/pkg/middleware"
	"github.com/kart-io/insight/pkg/response"
)

// WriteResponse writes the response to the client.
// It handles both success and error cases, ensuring consistent response format.
func WriteResponse(c *gin.Context, err error, data interface{}) {
	requestID := middleware.GetRequestID(c.Request.Context())

	if err != nil {
		resp := response.Err(errors.FromError(err)).WithRequestID(requestID)
		c.JSON(resp.HTTPStatus(), resp)
		return
	}

	// data can be *response.Response (e.g. from response.Page) or raw data
	if resp, ok := data.(*response.Response); ok {
		c.JSON(resp.HTTPStatus(), resp.WithRequestID(requestID))
		return
	}

	resp := response.Success(data).WithRequestID(requestID)
	c.JSON(resp.HTTPStatus(), resp)
}
