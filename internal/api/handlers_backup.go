// EFTP Registry - Technical and Vocational Education Data Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eftp-registry

package api

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/eftp-registry/internal/auth"
	"github.com/tomtom215/eftp-registry/internal/backup"
	"github.com/tomtom215/eftp-registry/internal/logging"
	"github.com/tomtom215/eftp-registry/internal/models"
)

// CreateBackupRequest is the body of POST /backups.
type CreateBackupRequest struct {
	Kind    models.BackupKind `json:"kind"`
	Comment string            `json:"comment" validate:"max=1000"`
}

func (h *Handler) backupID(r *http.Request) (int64, error) {
	return pathInt64(chi.URLParam(r, "id"), "id")
}

func userRef(r *http.Request) *int64 {
	return auth.SubjectFromContext(r.Context()).UserRef()
}

// ListBackups returns the history, newest first, with aggregate stats.
// Query: status, kind, limit, offset.
func (h *Handler) ListBackups(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := backup.ListOptions{
		Status: models.BackupStatus(strings.ToUpper(q.Get("status"))),
		Kind:   models.BackupKind(strings.ToUpper(q.Get("kind"))),
		Limit:  getIntParam(r, "limit", 50),
		Offset: getIntParam(r, "offset", 0),
	}

	records, err := h.backups.ListBackups(r.Context(), opts)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	stats, err := h.backups.Stats(r.Context())
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondList(w, r, map[string]interface{}{
		"backups": records,
		"stats":   stats,
	}, len(records))
}

// CreateBackup runs a backup synchronously. A FAILED record is returned
// with 502 so clients can read its log.
func (h *Handler) CreateBackup(w http.ResponseWriter, r *http.Request) {
	var req CreateBackupRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			respondDomainError(w, r, err)
			return
		}
	}
	if req.Kind == "" {
		req.Kind = models.KindManual
	}
	req.Kind = models.BackupKind(strings.ToUpper(string(req.Kind)))

	rec, err := h.backups.CreateBackup(r.Context(), req.Kind, req.Comment, userRef(r))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	if rec.Status != models.StatusSuccess {
		respondJSON(w, http.StatusBadGateway, &APIResponse{
			Data:     rec,
			Error:    &APIError{Code: CodeToolFailure, Message: "Backup failed"},
			Metadata: newMetadata(r),
		})
		return
	}
	respondData(w, r, http.StatusCreated, rec)
}

func (h *Handler) GetBackup(w http.ResponseWriter, r *http.Request) {
	id, err := h.backupID(r)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	rec, err := h.backups.GetBackup(r.Context(), id)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, rec)
}

func (h *Handler) DeleteBackup(w http.ResponseWriter, r *http.Request) {
	id, err := h.backupID(r)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	if err := h.backups.DeleteBackup(r.Context(), id); err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, map[string]int64{"deleted": id})
}

// RestoreBackup restores the database from a backup. The restore record is
// returned in every case; a failed restore answers 410 when the file was
// missing and 502 otherwise.
func (h *Handler) RestoreBackup(w http.ResponseWriter, r *http.Request) {
	id, err := h.backupID(r)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	rec, err := h.backups.RestoreBackup(r.Context(), id, userRef(r))
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	if rec.Status == models.StatusSuccess {
		respondData(w, r, http.StatusOK, rec)
		return
	}

	status, apiErr := http.StatusBadGateway, &APIError{Code: CodeToolFailure, Message: "Restore failed"}
	if strings.Contains(rec.Log, models.ErrFileMissing.Error()) {
		status, apiErr = http.StatusGone, &APIError{Code: CodeFileMissing, Message: "Backup file missing"}
	}
	respondJSON(w, status, &APIResponse{Data: rec, Error: apiErr, Metadata: newMetadata(r)})
}

// ListRestores returns the restore attempts of one backup.
func (h *Handler) ListRestores(w http.ResponseWriter, r *http.Request) {
	id, err := h.backupID(r)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	records, err := h.backups.ListRestores(r.Context(), id)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	respondList(w, r, records, len(records))
}

// DownloadBackup streams the backup artifact as an attachment.
func (h *Handler) DownloadBackup(w http.ResponseWriter, r *http.Request) {
	id, err := h.backupID(r)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	rc, rec, err := h.backups.DownloadBackup(r.Context(), id)
	if err != nil {
		respondDomainError(w, r, err)
		return
	}
	defer rc.Close()

	contentType := "application/vnd.sqlite3"
	if strings.HasSuffix(rec.FileName, ".gz") {
		contentType = "application/gzip"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+rec.FileName+`"`)
	w.Header().Set("Content-Length", strconv.FormatInt(rec.FileSize, 10))
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, rc); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Int64("backup_id", id).Msg("Backup download interrupted")
	}
}
