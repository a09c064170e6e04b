package model

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	ort "github.com/yalue/onnxruntime_go"
	"go.uber.org/zap"
)

type Options struct {
	ModelPath    string
	MetadataPath string
	// LibraryPath points at onnxruntime.so / .dylib / .dll when it is not
	// on the default loader path.
	LibraryPath string
	DownloadDir string
	S3Region    string
}

// Classifier wraps a frozen ONNX image classifier. It holds no per-request
// state: every call allocates and frees its own tensors, so one instance
// can be shared by all handlers without locking.
type Classifier struct {
	session  *ort.DynamicAdvancedSession
	metadata Metadata
	logger   *zap.Logger
}

// Load reads the checkpoint metadata, opens the ONNX graph and runs one
// warm-up pass so a graph that disagrees with its metadata fails here
// instead of on the first request.
func Load(ctx context.Context, opts Options, logger *zap.Logger) (*Classifier, error) {
	metadataPath, err := resolve(ctx, opts.MetadataPath, opts.DownloadDir, opts.S3Region)
	if err != nil {
		return nil, fmt.Errorf("fetch metadata: %w", err)
	}
	modelPath, err := resolve(ctx, opts.ModelPath, opts.DownloadDir, opts.S3Region)
	if err != nil {
		return nil, fmt.Errorf("fetch model: %w", err)
	}

	metadata, err := LoadMetadata(metadataPath)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("model file: %w", err)
	}

	if opts.LibraryPath != "" {
		ort.SetSharedLibraryPath(opts.LibraryPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("failed to initialize ONNX environment: %w", err)
	}

	session, err := ort.NewDynamicAdvancedSession(modelPath,
		[]string{metadata.InputName}, []string{metadata.OutputName}, nil)
	if err != nil {
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	c := &Classifier{
		session:  session,
		metadata: metadata,
		logger:   logger,
	}

	if _, err := c.Classify(ctx, make([]float32, metadata.InputSize())); err != nil {
		c.Close()
		return nil, fmt.Errorf("warm-up inference: %w", err)
	}

	logger.Info("model loaded",
		zap.String("model", modelPath),
		zap.String("architecture", metadata.Architecture),
		zap.Int("classes", len(metadata.Classes)),
		zap.Float64("val_acc", metadata.ValAcc),
	)
	return c, nil
}

// LoadMetadata reads and validates a checkpoint metadata file.
func LoadMetadata(path string) (Metadata, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to read metadata: %w", err)
	}

	var metadata Metadata
	if err := json.Unmarshal(raw, &metadata); err != nil {
		return Metadata{}, fmt.Errorf("failed to parse metadata: %w", err)
	}
	if err := metadata.normalize(); err != nil {
		return Metadata{}, fmt.Errorf("invalid metadata %s: %w", path, err)
	}
	return metadata, nil
}

func (c *Classifier) Metadata() Metadata {
	return c.metadata
}

// Classify runs one preprocessed CHW tensor through the network.
func (c *Classifier) Classify(ctx context.Context, input []float32) (*Prediction, error) {
	if want := c.metadata.InputSize(); len(input) != want {
		return nil, fmt.Errorf("%w: expected %d values, got %d", ErrInference, want, len(input))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	inputTensor, err := ort.NewTensor(ort.NewShape(c.metadata.InputShape...), input)
	if err != nil {
		return nil, fmt.Errorf("%w: create input tensor: %v", ErrInference, err)
	}
	defer inputTensor.Destroy()

	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(c.metadata.OutputShape...))
	if err != nil {
		return nil, fmt.Errorf("%w: create output tensor: %v", ErrInference, err)
	}
	defer outputTensor.Destroy()

	err = c.session.Run([]ort.ArbitraryTensor{inputTensor}, []ort.ArbitraryTensor{outputTensor})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInference, err)
	}

	logits := make([]float32, len(outputTensor.GetData()))
	copy(logits, outputTensor.GetData())
	return NewPrediction(c.metadata.Classes, logits)
}

func (c *Classifier) Close() {
	if c.session != nil {
		c.session.Destroy()
		c.session = nil
	}
	ort.DestroyEnvironment()
}
