package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// errNoFile signals an absent (optional) multipart file field.
var errNoFile = errors.New("no file provided")

// stageUpload copies a multipart file field to a staging file under dir and
// returns its path. Callers best-effort remove the file when done; cleanup
// is not guaranteed on failure paths.
func stageUpload(r *http.Request, field, dir string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", errNoFile
		}
		return "", fmt.Errorf("read %s upload: %w", field, err)
	}
	defer file.Close()

	return writeStaged(file, header, dir)
}

func writeStaged(file multipart.File, header *multipart.FileHeader, dir string) (string, error) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	path := filepath.Join(dir, fmt.Sprintf("stage-%s%s", uuid.NewString(), ext))

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create staging file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("write staging file: %w", err)
	}

	return path, nil
}

func removeStaged(path string) {
	if path != "" {
		_ = os.Remove(path)
	}
}

// pagination reads page/limit query parameters with the usual defaults.
func pagination(r *http.Request) (page, limit int) {
	page, limit = 1, 10
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	return page, limit
}

// validID reports whether the path parameter is a well-formed identifier.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
