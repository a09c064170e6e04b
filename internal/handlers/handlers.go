package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/Brownie44l1/partscan/internal/cache"
	"github.com/Brownie44l1/partscan/internal/model"
)

// Classifier is the frozen image model. *model.Classifier implements it.
type Classifier interface {
	Metadata() model.Metadata
	Classify(ctx context.Context, input []float32) (*model.Prediction, error)
}

// Static stand-ins returned with every identification. They are not looked
// up in the catalog.
var (
	partCategory         = "Electronic Component"
	placeholderSpecs     = map[string]string{"Type": "Electronic Component"}
	placeholderUses      = []string{"Various electronic applications"}
	placeholderPricing   = Pricing{EstimatedRange: "100-5000 BDT", Currency: "BDT"}
	placeholderSuppliers = []VendorSummary{
		{Name: "Electronics BD", Location: "Dhaka", Rating: 4.7},
		{Name: "Component House", Location: "Chittagong", Rating: 4.5},
	}
)

// uploadFields are tried in order; "image" is what older clients send.
var uploadFields = []string{"file", "image"}

type Handler struct {
	classifier  Classifier
	cache       cache.Store
	fingerprint string
	logger      *zap.Logger
	opts        Options
}

func NewHandler(classifier Classifier, store cache.Store, logger *zap.Logger, opts Options) *Handler {
	if store == nil {
		store = cache.Noop{}
	}
	if opts.MaxUploadSize <= 0 {
		opts.MaxUploadSize = 10 << 20
	}
	return &Handler{
		classifier:  classifier,
		cache:       store,
		fingerprint: classifier.Metadata().Fingerprint(),
		logger:      logger,
		opts:        opts,
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	meta := h.classifier.Metadata()
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Classes: len(meta.Classes),
		ValAcc:  meta.ValAcc,
		Method:  meta.Architecture,
	})
}

// Predict classifies an already preprocessed tensor and returns the score of
// every class.
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxUploadSize)

	var req model.PredictionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		clientError(w, http.StatusBadRequest, ErrKindBadRequest, "Invalid JSON")
		return
	}

	meta := h.classifier.Metadata()
	if expected := meta.InputSize(); len(req.Image) != expected {
		clientError(w, http.StatusBadRequest, ErrKindBadRequest,
			fmt.Sprintf("Expected %d values, got %d", expected, len(req.Image)))
		return
	}

	pred, err := h.classifier.Classify(r.Context(), req.Image)
	if err != nil {
		serverError(w, h.logger, h.opts, ErrKindInference, err)
		return
	}

	writeJSON(w, http.StatusOK, model.PredictionResponse{
		Class:       pred.Label,
		Name:        model.DisplayName(pred.Label),
		Confidence:  pred.Percent(),
		Predictions: pred.Scores(meta.Classes),
	})
}

// IdentifyPart classifies one uploaded photo.
func (h *Handler) IdentifyPart(w http.ResponseWriter, r *http.Request) {
	// Leave room for multipart framing on top of the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxUploadSize+1<<20)

	if err := r.ParseMultipartForm(h.opts.MaxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			clientError(w, http.StatusRequestEntityTooLarge, ErrKindInvalidUpload,
				fmt.Sprintf("Upload exceeds %d bytes", h.opts.MaxUploadSize))
			return
		}
		clientError(w, http.StatusBadRequest, ErrKindInvalidUpload, "Failed to parse form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	data, filename, err := readUpload(r, h.opts.MaxUploadSize)
	if errors.Is(err, errUploadTooLarge) {
		clientError(w, http.StatusRequestEntityTooLarge, ErrKindInvalidUpload,
			fmt.Sprintf("Upload exceeds %d bytes", h.opts.MaxUploadSize))
		return
	}
	if err != nil {
		clientError(w, http.StatusBadRequest, ErrKindInvalidUpload, err.Error())
		return
	}

	pred, cached, err := h.identify(r.Context(), data)
	if err != nil {
		kind := ErrKindInference
		if errors.Is(err, model.ErrDecode) {
			kind = ErrKindDecode
		}
		serverError(w, h.logger, h.opts, kind, err)
		return
	}

	h.logger.Info("part identified",
		zap.String("file", filename),
		zap.Int("bytes", len(data)),
		zap.String("label", pred.Label),
		zap.Float64("confidence", pred.Percent()),
		zap.Bool("cached", cached),
	)

	writeJSON(w, http.StatusOK, h.identifyResponse(pred))
}

var errUploadTooLarge = errors.New("upload too large")

// readUpload returns the first file found under uploadFields. The body cap
// leaves room for multipart framing, so the file itself is checked against
// limit here.
func readUpload(r *http.Request, limit int64) ([]byte, string, error) {
	for _, field := range uploadFields {
		file, header, err := r.FormFile(field)
		if errors.Is(err, http.ErrMissingFile) {
			continue
		}
		if err != nil {
			return nil, "", fmt.Errorf("read upload: %w", err)
		}
		defer file.Close()

		if header.Size > limit {
			return nil, "", errUploadTooLarge
		}
		data, err := io.ReadAll(io.LimitReader(file, limit+1))
		if err != nil {
			return nil, "", fmt.Errorf("read upload: %w", err)
		}
		if int64(len(data)) > limit {
			return nil, "", errUploadTooLarge
		}
		return data, header.Filename, nil
	}
	return nil, "", errors.New("No image file provided. Use 'file' as the form field name")
}

// identify returns the prediction for raw image bytes and whether it came
// from the cache.
func (h *Handler) identify(ctx context.Context, data []byte) (*model.Prediction, bool, error) {
	meta := h.classifier.Metadata()
	key := cache.Key(h.fingerprint, data)
	if raw, ok, err := h.cache.Get(ctx, key); err != nil {
		h.logger.Warn("prediction cache read failed", zap.Error(err))
	} else if ok {
		var pred model.Prediction
		if err := json.Unmarshal(raw, &pred); err == nil && knownLabel(meta, pred) {
			return &pred, true, nil
		}
		h.logger.Warn("discarding unusable cache entry", zap.String("key", key))
	}

	img, _, err := model.DecodeImage(data)
	if err != nil {
		return nil, false, err
	}

	input := model.Preprocess(img, meta.ImageSize)

	pred, err := h.classifier.Classify(ctx, input)
	if err != nil {
		if !errors.Is(err, model.ErrInference) {
			err = fmt.Errorf("%w: %v", model.ErrInference, err)
		}
		return nil, false, err
	}

	entry := *pred
	entry.Probabilities = nil
	if raw, err := json.Marshal(entry); err == nil {
		if err := h.cache.Set(ctx, key, raw); err != nil {
			h.logger.Warn("prediction cache write failed", zap.Error(err))
		}
	}
	return pred, false, nil
}

func knownLabel(meta model.Metadata, pred model.Prediction) bool {
	return pred.Index >= 0 && pred.Index < len(meta.Classes) && meta.Classes[pred.Index] == pred.Label
}

func (h *Handler) identifyResponse(pred *model.Prediction) IdentifyResponse {
	return IdentifyResponse{
		Success: true,
		Part: Part{
			Name:         model.DisplayName(pred.Label),
			Category:     partCategory,
			Confidence:   pred.Percent(),
			DetectedType: pred.Label,
		},
		Specifications: placeholderSpecs,
		Applications:   placeholderUses,
		Pricing:        placeholderPricing,
		Vendors:        placeholderSuppliers,
		Method:         h.classifier.Metadata().Architecture,
		Note:           fmt.Sprintf("AI Confidence: %.1f%%", pred.Probability*100),
	}
}
