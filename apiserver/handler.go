// Copyright 2025 Tomas Machalek <tomas.machalek@gmail.com>
// Copyright 2025 Department of Linguistics,
// Faculty of Arts, Charles University
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package apiserver

import (
	"fmt"
	"net/http"

	"github.com/czcorpus/cnc-gokit/unireq"
	"github.com/czcorpus/cnc-gokit/uniresp"
	"github.com/gin-gonic/gin"
	"github.com/janusza/ThreatTrace-Cyber-Attack-Detection/prediction"
)

func (api *apiServer) handleVersion(ctx *gin.Context) {
	uniresp.WriteJSONResponse(ctx.Writer, api.version)
}

func (api *apiServer) handleSequences(ctx *gin.Context) {
	seqs, err := api.statsDB.GetFrequentSequences()
	if err != nil {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusInternalServerError)
		return
	}
	uniresp.WriteJSONResponse(ctx.Writer, seqs)
}

func (api *apiServer) handleTrace(ctx *gin.Context) {
	traceID := ctx.Param("traceId")
	rec, err := api.statsDB.GetRecord(traceID)
	if err != nil {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusNotFound)
		return
	}
	uniresp.WriteJSONResponse(ctx.Writer, map[string]any{
		"id":              rec.ID,
		"window":          rec.Window,
		"process":         rec.Process,
		"tokens":          rec.Tokens,
		"length":          rec.Length,
		"compactedTokens": rec.CompactedTokens,
		"compactedLength": rec.CompactedLength,
		"label":           rec.Label.String(),
	})
}

func (api *apiServer) handleTraceFeatures(ctx *gin.Context) {
	traceID := ctx.Param("traceId")
	fv, err := api.featsDB.GetTraceFeatures(traceID)
	if err != nil {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusNotFound)
		return
	}
	uniresp.WriteJSONResponse(ctx.Writer, fv)
}

func (api *apiServer) handleGroups(ctx *gin.Context) {
	groups, err := api.featsDB.ListGroupFeatures()
	if err != nil {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusInternalServerError)
		return
	}
	uniresp.WriteJSONResponse(ctx.Writer, groups)
}

func (api *apiServer) handleGroupFeatures(ctx *gin.Context) {
	groupID := ctx.Param("groupId")
	fv, err := api.featsDB.GetGroupFeatures(groupID)
	if err != nil {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusNotFound)
		return
	}
	uniresp.WriteJSONResponse(ctx.Writer, fv)
}

func (api *apiServer) handleSimilar(ctx *gin.Context) {
	encoded := ctx.Query("trace")
	if encoded == "" {
		uniresp.RespondWithErrorJSON(
			ctx, fmt.Errorf("missing `trace` argument"), http.StatusBadRequest,
		)
		return
	}
	limit, ok := unireq.GetURLIntArgOrFail(ctx, "limit", api.conf.NumSimilarTraces)
	if !ok {
		return
	}
	est, err := prediction.EstimateTrace(api.statsDB, encoded, limit)
	if err != nil {
		uniresp.RespondWithErrorJSON(ctx, err, http.StatusInternalServerError)
		return
	}
	neighbours := make([]map[string]any, len(est.Neighbours))
	for i, item := range est.Neighbours {
		neighbours[i] = map[string]any{
			"id":       item.Record.ID,
			"distance": item.Distance,
			"label":    item.Record.Label.String(),
		}
	}
	uniresp.WriteJSONResponse(ctx.Writer, map[string]any{
		"attackRatio": est.AttackRatio,
		"neighbours":  neighbours,
	})
}
