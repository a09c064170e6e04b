package model

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

const (
	DefaultImageSize    = 224
	DefaultArchitecture = "EfficientNet-B0"
)

// Metadata describes a checkpoint. It is written next to the exported ONNX
// graph by the training job and never changes afterwards.
type Metadata struct {
	InputShape   []int64  `json:"input_shape"`
	OutputShape  []int64  `json:"output_shape"`
	Classes      []string `json:"classes"`
	ImageSize    int      `json:"image_size"`
	ValAcc       float64  `json:"val_acc"`
	InputName    string   `json:"input_name"`
	OutputName   string   `json:"output_name"`
	Architecture string   `json:"architecture"`
}

// normalize fills in defaults and checks that the shapes agree with the
// class list.
func (m *Metadata) normalize() error {
	if len(m.Classes) == 0 {
		return errors.New("metadata has no classes")
	}
	for i, c := range m.Classes {
		if c == "" {
			return fmt.Errorf("metadata class %d is empty", i)
		}
	}
	if m.ImageSize == 0 {
		m.ImageSize = DefaultImageSize
	}
	if m.InputName == "" {
		m.InputName = "input"
	}
	if m.OutputName == "" {
		m.OutputName = "output"
	}
	if m.Architecture == "" {
		m.Architecture = DefaultArchitecture
	}
	size := int64(m.ImageSize)
	if len(m.InputShape) == 0 {
		m.InputShape = []int64{1, 3, size, size}
	}
	if len(m.OutputShape) == 0 {
		m.OutputShape = []int64{1, int64(len(m.Classes))}
	}

	in := m.InputShape
	if len(in) != 4 || in[0] != 1 || in[1] != 3 || in[2] != size || in[3] != size {
		return fmt.Errorf("input shape %v does not match [1 3 %d %d]", in, size, size)
	}
	out := m.OutputShape
	if len(out) != 2 || out[0] != 1 {
		return fmt.Errorf("output shape %v is not [1 N]", out)
	}
	if out[1] != int64(len(m.Classes)) {
		return fmt.Errorf("output shape %v does not match %d classes", out, len(m.Classes))
	}
	return nil
}

// InputSize is the number of float32 values in one input tensor.
func (m Metadata) InputSize() int {
	n := 1
	for _, d := range m.InputShape {
		n *= int(d)
	}
	return n
}

// Fingerprint identifies the checkpoint by everything that shapes its
// output: architecture, input size, recorded accuracy and the class list.
func (m Metadata) Fingerprint() string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d|%g|%s",
		m.Architecture, m.ImageSize, m.ValAcc, strings.Join(m.Classes, "\x00"))))
	return hex.EncodeToString(sum[:8])
}

type PredictionRequest struct {
	Image []float32 `json:"image"`
}

type PredictionResponse struct {
	Class       string             `json:"class"`
	Name        string             `json:"name"`
	Confidence  float64            `json:"confidence"`
	Predictions map[string]float64 `json:"predictions"`
}

// Prediction is the classifier's answer for one image.
type Prediction struct {
	Index         int       `json:"index"`
	Label         string    `json:"label"`
	Probability   float64   `json:"probability"`
	Probabilities []float64 `json:"probabilities,omitempty"`
}
