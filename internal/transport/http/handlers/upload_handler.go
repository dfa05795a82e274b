package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const avatarFolder = "vibehive_avatars"

type UploadHandler struct {
	cloudinaryURL string
}

func NewUploadHandler(cloudinaryURL string) *UploadHandler {
	return &UploadHandler{cloudinaryURL: cloudinaryURL}
}

// SignUpload creates a signed parameter set so the browser can upload an
// avatar straight to the blob store without the file passing through us.
func (h *UploadHandler) SignUpload(w http.ResponseWriter, r *http.Request) {
	if h.cloudinaryURL == "" {
		writeError(w, http.StatusServiceUnavailable, "UPLOADS_DISABLED", "Avatar uploads are not configured")
		return
	}

	cld, err := cloudinary.NewFromURL(h.cloudinaryURL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Failed to initialize uploads")
		return
	}

	parsedURL, err := url.Parse(h.cloudinaryURL)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Failed to initialize uploads")
		return
	}
	secret, _ := parsedURL.User.Password()

	paramsToSign, err := api.StructToParams(uploader.UploadParams{
		Folder: avatarFolder,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Failed to prepare signature params")
		return
	}

	timestamp := time.Now().Unix()
	paramsToSign.Set("timestamp", strconv.FormatInt(timestamp, 10))

	signature, err := api.SignParameters(paramsToSign, secret)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "INTERNAL", "Failed to sign upload params")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"signature": signature,
		"timestamp": timestamp,
		"api_key":   cld.Config.Cloud.APIKey,
		"folder":    avatarFolder,
	})
}
