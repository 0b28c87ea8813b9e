// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package api serves the climate bridge over HTTP
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SetupRouter builds the HTTP routes. A nil metrics handler disables /metrics.
func SetupRouter(climate *ClimateHandler, metrics http.Handler, log *logrus.Entry) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(log))
	router.Use(cors())

	v1 := router.Group("/api/v1")
	{
		v1.GET("/state", climate.GetState)
		v1.GET("/traits", climate.GetTraits)
		v1.POST("/control", climate.Control)
		v1.PUT("/switches/:name", climate.SetSwitch)
		v1.PUT("/vertical_vane", climate.SelectVane)
		v1.GET("/changes", climate.GetPendingChanges)
		v1.POST("/changes", climate.QueueChange)
		v1.GET("/statistics", climate.GetStatistics)
	}

	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics))
	}

	return router
}

func requestLogger(log *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start),
		}).Debug("HTTP request")
	}
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
