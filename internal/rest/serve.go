// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package rest serves the operator pipelines over HTTP.
package rest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mlnoga/dipfilter/internal/ops"
	"github.com/mlnoga/dipfilter/web"
	_ "github.com/mlnoga/dipfilter/internal/ops/denoise"    // register operators
	_ "github.com/mlnoga/dipfilter/internal/ops/freqdomain" // register operators
	_ "github.com/mlnoga/dipfilter/internal/ops/sharpen"    // register operators
	_ "github.com/mlnoga/dipfilter/internal/ops/tone"       // register operators
)

// Runs the HTTP server on the given address, e.g. ":8080". Blocks until the server fails
func Serve(addr string) error {
	return NewRouter().Run(addr)
}

// Returns the router with all API routes
func NewRouter() *gin.Engine {
	r := gin.Default()
	r.GET("/", getIndex)
	api := r.Group("/api")
	{
		v1 := api.Group("/v1")
		{
			v1.GET("/ping", getPing)
			v1.GET("/operators", getOperators)
			v1.POST("/run", postRun)
		}
	}
	return r
}

func getIndex(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", web.IndexHTML)
}

func getPing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "pong",
	})
}

func getOperators(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"operators": ops.OperatorTypes(),
	})
}

func printArgs(logWriter io.Writer, prefix, suffix string, args interface{}) error {
	m, err := json.MarshalIndent(args, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintf(logWriter, "%s%s%s", prefix, string(m), suffix)
	return nil
}

type postRunArgs struct {
	FilePatterns []string        `json:"filePatterns" binding:"required"`
	Sequence     *ops.OpSequence `json:"sequence" binding:"required"`
}

// Loads the files matching the patterns, and applies the operator sequence to each.
// Streams the log to the response as plain text
func postRun(c *gin.Context) {
	var args postRunArgs
	if err := c.ShouldBindJSON(&args); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	logWriter := c.Writer
	header := logWriter.Header()
	header.Set("Content-Type", "text/plain")
	logWriter.WriteHeader(http.StatusOK)

	if err := printArgs(logWriter, "Arguments:\n", "\n", args); err != nil {
		fmt.Fprintf(logWriter, "Error printing arguments: %s\n", err.Error())
		return
	}

	ctx := ops.NewContext(logWriter)
	ctx.RestrictPaths = true
	seq := ops.NewOpSequence(ops.NewOpLoadMany(args.FilePatterns), args.Sequence)
	promises, err := seq.MakePromises(nil, ctx)
	if err == nil {
		_, err = ops.MaterializeAll(promises, ctx.MaxThreads, true)
	}
	if err != nil {
		fmt.Fprintf(logWriter, "error: %s\n", err.Error())
	} else {
		fmt.Fprintf(logWriter, "done\n")
	}
	logWriter.Flush()
}
