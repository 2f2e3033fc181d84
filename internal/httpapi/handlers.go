/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package httpapi

import (
	"encoding/json"
	"net/http"

	"club-points-ledger/internal/api"
	"club-points-ledger/internal/apperr"
	"club-points-ledger/internal/auth"
	"club-points-ledger/internal/club"
	"club-points-ledger/internal/models"

	"github.com/go-chi/chi/v5"
)

// Handler binds HTTP requests to the club and ledger services.
type Handler struct {
	club   *club.Service
	ledger *api.LedgerService
}

type adjustPointsBody struct {
	TargetUid string      `json:"targetUid"`
	Delta     json.Number `json:"delta"`
	RequestId string      `json:"requestId"`
}

type setRoleBody struct {
	TargetUid     string `json:"targetUid"`
	IsAdmin       any    `json:"isAdmin"`
	IsChallenger  any    `json:"isChallenger"`
	IsTestAccount any    `json:"isTestAccount"`
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	if err := h.ledger.HealthCheck(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePostRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	result, err := h.club.CreatePost(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) TogglePostLike(w http.ResponseWriter, r *http.Request) {
	var req models.PostRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	result, err := h.club.TogglePostLike(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) AddPostComment(w http.ResponseWriter, r *http.Request) {
	var req models.AddCommentRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	result, err := h.club.AddPostComment(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) DeletePostComment(w http.ResponseWriter, r *http.Request) {
	var req models.DeleteCommentRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	result, err := h.club.DeletePostComment(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	var req models.PostRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	result, err := h.club.DeletePost(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) AdminAdjustPoints(w http.ResponseWriter, r *http.Request) {
	var body adjustPointsBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	delta, err := integerDelta(body.Delta)
	if err != nil {
		writeError(w, err)
		return
	}
	result, err := h.club.AdminAdjustPoints(r.Context(), models.AdjustPointsRequest{
		TargetUid: body.TargetUid,
		Delta:     delta,
		RequestId: body.RequestId,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) AdminSetRole(w http.ResponseWriter, r *http.Request) {
	var body setRoleBody
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	result, err := h.club.AdminSetRole(r.Context(), models.SetRoleRequest{
		TargetUid:     body.TargetUid,
		IsAdmin:       boolField(body.IsAdmin),
		IsChallenger:  boolField(body.IsChallenger),
		IsTestAccount: boolField(body.IsTestAccount),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) Ranking(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", api.DefaultRankingLimit)
	if err != nil {
		writeError(w, err)
		return
	}
	ranking, err := h.ledger.GetRanking(r.Context(), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ranking)
}

func (h *Handler) Standing(w http.ResponseWriter, r *http.Request) {
	standing, err := h.ledger.GetStanding(r.Context(), chi.URLParam(r, "uid"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, standing)
}

// PointEvents lists the caller's own point history.
func (h *Handler) PointEvents(w http.ResponseWriter, r *http.Request) {
	uid := chi.URLParam(r, "uid")
	caller, _ := auth.CallerFrom(r.Context())
	if caller != uid {
		writeError(w, apperr.New(apperr.PermissionDenied, "point history is private"))
		return
	}

	limit, err := queryInt(r, "limit", api.DefaultHistoryLimit)
	if err != nil {
		writeError(w, err)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		writeError(w, err)
		return
	}

	history, err := h.ledger.GetPointHistory(r.Context(), uid, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, history)
}
