package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/dustin/go-humanize"

	"compressx/internal/domain"
)

const multipartMemory = 32 << 20

// readAsset pulls the uploaded file out of the multipart form, trying the
// field names in order, and validates it against the endpoint's media kind.
func (a *App) readAsset(w http.ResponseWriter, r *http.Request, kind domain.MediaKind, fields ...string) (domain.Asset, error) {
	r.Body = http.MaxBytesReader(w, r.Body, a.Config.MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return domain.Asset{}, domain.NewValidationError("no file uploaded")
	}

	for _, field := range fields {
		file, header, err := r.FormFile(field)
		if err != nil {
			continue
		}
		defer file.Close()

		if _, err := domain.ValidateFilename(header.Filename, kind); err != nil {
			return domain.Asset{}, err
		}
		data, err := io.ReadAll(file)
		if err != nil {
			return domain.Asset{}, domain.NewValidationError("failed to read uploaded file")
		}
		return domain.Asset{Name: header.Filename, Kind: kind, Data: data}, nil
	}

	if kind == domain.MediaKindVideo {
		return domain.Asset{}, domain.NewValidationError("No video file uploaded. Use 'file' or 'videofile' as the field name.")
	}
	return domain.Asset{}, domain.NewValidationError("no file uploaded")
}

// ImageUpload forwards an original image to the remote provider.
func (a *App) ImageUpload(w http.ResponseWriter, r *http.Request) {
	asset, err := a.readAsset(w, r, domain.MediaKindImage, "file")
	if err != nil {
		a.respondError(w, err)
		return
	}
	result, err := a.Media.Upload(r.Context(), asset, a.Config.UploadFolder)
	if err != nil {
		a.respondError(w, err)
		return
	}
	a.Logger.Info().
		Str("name", asset.Name).
		Str("size", humanize.Bytes(uint64(asset.Size()))).
		Str("public_id", result.PublicID).
		Msg("image uploaded")
	a.json(w, http.StatusOK, map[string]any{
		"success":  true,
		"message":  "Image uploaded successfully",
		"imageUrl": result.SecureURL,
		"data":     result,
	})
}

// VideoUpload forwards an original video to the remote provider. The field
// may be named either "file" or "videofile".
func (a *App) VideoUpload(w http.ResponseWriter, r *http.Request) {
	asset, err := a.readAsset(w, r, domain.MediaKindVideo, "videofile", "file")
	if err != nil {
		a.respondError(w, err)
		return
	}
	result, err := a.Media.Upload(r.Context(), asset, a.Config.UploadFolder)
	if err != nil {
		a.respondError(w, err)
		return
	}
	a.Logger.Info().
		Str("name", asset.Name).
		Str("size", humanize.Bytes(uint64(asset.Size()))).
		Str("public_id", result.PublicID).
		Msg("video uploaded")
	a.json(w, http.StatusOK, map[string]any{
		"success":  true,
		"message":  "Video uploaded successfully",
		"videoUrl": result.SecureURL,
		"data":     result,
	})
}

// ImageReducerUpload runs the full compression workflow for an image and
// optionally persists a metadata record when an email is supplied. Record
// creation is followed by an explicit notification; the notifier never
// affects the response.
func (a *App) ImageReducerUpload(w http.ResponseWriter, r *http.Request) {
	asset, err := a.readAsset(w, r, domain.MediaKindImage, "file")
	if err != nil {
		a.respondError(w, err)
		return
	}
	name := r.FormValue("name")
	tags := r.FormValue("tags")
	email := r.FormValue("email")

	result, err := a.Compressor.Compress(r.Context(), asset)
	if err != nil {
		a.respondError(w, err)
		return
	}

	response := map[string]any{
		"success":          true,
		"message":          "Image compressed and uploaded successfully",
		"imageUrl":         result.CompressedURL,
		"originalUrl":      result.OriginalURL,
		"originalSize":     result.OriginalSize,
		"compressedSize":   result.CompressedSize,
		"percentReduction": result.PercentReduction,
		"data":             result.Upload,
	}

	if email != "" {
		record := domain.Record{
			Name:  nameOrDefault(name, asset.Name),
			URL:   result.CompressedURL,
			Tags:  tags,
			Email: email,
		}
		if err := a.Records.Create(r.Context(), &record); err != nil {
			a.respondError(w, err)
			return
		}
		a.Notifier.RecordCreated(record)
		response["recordId"] = record.ID
	}

	a.json(w, http.StatusOK, response)
}

// LocalFileUpload stores the file on local disk under a timestamp-derived
// name and persists a metadata record. The email field is mandatory here
// because the record always triggers a notification.
func (a *App) LocalFileUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, a.Config.MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		a.respondError(w, domain.NewValidationError("no file uploaded"))
		return
	}

	email := r.FormValue("email")
	if email == "" {
		a.respondError(w, domain.NewValidationError("Email is required to send notification"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		a.respondError(w, domain.NewValidationError("no file uploaded"))
		return
	}
	defer file.Close()

	ext := domain.ExtractExtension(header.Filename)
	if ext == "" {
		a.respondError(w, domain.NewValidationError("file must have a valid extension"))
		return
	}
	data, err := io.ReadAll(file)
	if err != nil {
		a.respondError(w, domain.NewValidationError("failed to read uploaded file"))
		return
	}

	storedPath, err := a.Files.Store(r.Context(), ext, data)
	if err != nil {
		a.respondError(w, fmt.Errorf("store file: %w", err))
		return
	}

	record := domain.Record{
		Name:  nameOrDefault(r.FormValue("name"), header.Filename),
		URL:   storedPath,
		Tags:  r.FormValue("tags"),
		Email: email,
	}
	if err := a.Records.Create(r.Context(), &record); err != nil {
		a.respondError(w, err)
		return
	}
	a.Notifier.RecordCreated(record)

	a.Logger.Info().
		Str("path", storedPath).
		Str("size", humanize.Bytes(uint64(len(data)))).
		Str("record_id", record.ID).
		Msg("file stored locally")
	a.json(w, http.StatusOK, map[string]any{
		"success":  true,
		"message":  "File uploaded and notification attempted",
		"path":     storedPath,
		"recordId": record.ID,
	})
}

func nameOrDefault(name, fallback string) string {
	if name != "" {
		return name
	}
	return fallback
}
