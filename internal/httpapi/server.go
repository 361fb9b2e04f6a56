package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"detectd/internal/detector"
	"detectd/internal/labels"
	"detectd/pkg/types"
)

// uploadField is the multipart field carrying the image on POST /.
const uploadField = "files"

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Detect(ctx context.Context, r io.Reader) ([]detector.Detection, error)
	Labels() labels.Map
	Status() types.StatusResponse
	Ready() bool
}

// ImageSource turns request input into a local, readable image. Closing the
// returned reader releases any file backing it.
type ImageSource interface {
	FetchURL(ctx context.Context, rawURL string) (io.ReadCloser, error)
	SaveUpload(filename string, r io.Reader) (io.ReadCloser, error)
}

type handler struct {
	svc Service
	src ImageSource
}

func NewMux(svc Service, src ImageSource) http.Handler {
	h := &handler{svc: svc, src: src}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	r.Use(middleware.Compress(5))
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
			MaxAge:         300,
		}))
	}
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/", h.detectURL)
	r.Post("/", h.detectUpload)
	r.Get("/labels", h.listLabels)
	r.Get("/status", h.getStatus)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("unavailable"))
	})
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	MountSwagger(r)
	return r
}

// detectURL godoc
// @Summary      Detect objects in an image fetched from a URL
// @Tags         detect
// @Produce      json
// @Param        url  query     string  true  "Image URL (http or https)"
// @Success      200  {array}   types.ScoredDetection
// @Failure      500  {string}  string  "exception raised: ..."
// @Router       / [get]
func (h *handler) detectURL(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, cancel := requestContext(r)
	defer cancel()

	img, err := h.src.FetchURL(ctx, r.URL.Query().Get("url"))
	if err != nil {
		h.fail(w, r, detector.Wrap(detector.KindFetch, "fetch", err), start)
		return
	}
	defer img.Close()

	dets, err := h.svc.Detect(ctx, img)
	if err != nil {
		h.fail(w, r, err, start)
		return
	}
	logDetections(r, dets)
	writeJSON(w, http.StatusOK, scoredDetections(dets))
	logRequest(r, http.StatusOK, time.Since(start), len(dets), nil)
}

// detectUpload godoc
// @Summary      Detect objects in an uploaded image
// @Tags         detect
// @Accept       multipart/form-data
// @Produce      json
// @Param        files  formData  file  true  "Image file"
// @Success      200    {object}  types.ClassifyResponse
// @Failure      500    {string}  string  "exception raised: ..."
// @Router       / [post]
func (h *handler) detectUpload(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, cancel := requestContext(r)
	defer cancel()

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	file, hdr, err := r.FormFile(uploadField)
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			err = errors.New("no file in multipart field \"" + uploadField + "\"")
		}
		h.fail(w, r, detector.Wrap(detector.KindUpload, "upload", err), start)
		return
	}
	defer file.Close()

	img, err := h.src.SaveUpload(hdr.Filename, file)
	if err != nil {
		h.fail(w, r, detector.Wrap(detector.KindUpload, "upload", err), start)
		return
	}
	defer img.Close()

	dets, err := h.svc.Detect(ctx, img)
	if err != nil {
		h.fail(w, r, err, start)
		return
	}
	logDetections(r, dets)
	writeJSON(w, http.StatusOK, ClassifyResponse(dets))
	logRequest(r, http.StatusOK, time.Since(start), len(dets), nil)
}

// listLabels godoc
// @Summary  List the category map
// @Tags     model
// @Produce  json
// @Success  200  {object}  types.LabelsResponse
// @Router   /labels [get]
func (h *handler) listLabels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.LabelsResponse{Labels: h.svc.Labels().Entries()})
}

// getStatus godoc
// @Summary  Detector state and counters
// @Tags     model
// @Produce  json
// @Success  200  {object}  types.StatusResponse
// @Router   /status [get]
func (h *handler) getStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Status())
}

// fail reports err as a 500 carrying the message as a JSON string. A client
// that already went away gets nothing written; server shutdown still answers.
func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error, start time.Time) {
	kind := detector.KindOf(err)
	if r.Context().Err() != nil {
		logRequest(r, 0, time.Since(start), 0, err)
		return
	}
	requestFailures.WithLabelValues(kind.String()).Inc()
	writeJSONError(w, http.StatusInternalServerError, "exception raised: "+err.Error())
	logRequest(r, http.StatusInternalServerError, time.Since(start), 0, err)
}

// requestContext joins the request with the server base context and applies
// the configured inference timeout.
func requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	ctx, cancel := joinContexts(serverBaseCtx, r.Context())
	if inferTimeout <= 0 {
		return ctx, cancel
	}
	tctx, tcancel := context.WithTimeout(ctx, time.Duration(inferTimeout)*time.Second)
	return tctx, func() { tcancel(); cancel() }
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
