// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response is the envelope for every JSON reply
type Response struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data,omitempty"`
	Err  string      `json:"err,omitempty"`
}

func ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: 0, Msg: "ok", Data: data})
}

func fail(c *gin.Context, status int, msg string, err error) {
	resp := Response{Code: status, Msg: msg}
	if err != nil {
		resp.Err = err.Error()
	}
	c.AbortWithStatusJSON(status, resp)
}
