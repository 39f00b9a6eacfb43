// Package detect runs one e-waste detection request through every stage.
package detect

import (
	"context"
	"strings"
	"time"

	"ewaste-server-go/src/configs"
	"ewaste-server-go/src/core/caption"
	"ewaste-server-go/src/core/classifier"
	apperrors "ewaste-server-go/src/core/errors"
	"ewaste-server-go/src/core/image"
	"ewaste-server-go/src/core/providers/recognizer"
	"ewaste-server-go/src/core/types"
	"ewaste-server-go/src/core/utils"
)

const opRecognize = "detect.recognize"

// Stage names, logged with every failure.
const (
	StageValidate  = "validate"
	StagePrepare   = "prepare"
	StageRecognize = "recognize"
)

// Request is one detection call as received from the endpoint.
type Request struct {
	RequestID string
	Image     string
	Item      string
}

// Detector 检测流水线. It is read-only after construction and safe for concurrent use.
type Detector struct {
	validator  *image.Validator
	processor  *image.ImageProcessor
	provider   recognizer.Provider
	classifier *classifier.Classifier
	timeout    time.Duration
	logger     *utils.TaggedLogger
}

// Options wires the stages of a Detector.
type Options struct {
	Validator  *image.Validator
	Processor  *image.ImageProcessor
	Provider   recognizer.Provider
	Classifier *classifier.Classifier
	Timeout    time.Duration
	Logger     *utils.Logger
}

// NewDetector 创建检测流水线
func NewDetector(opts Options) *Detector {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = configs.DefaultTimeout
	}
	cls := opts.Classifier
	if cls == nil {
		cls = classifier.New(nil)
	}
	return &Detector{
		validator:  opts.Validator,
		processor:  opts.Processor,
		provider:   opts.Provider,
		classifier: cls,
		timeout:    timeout,
		logger:     opts.Logger.WithTag("detect"),
	}
}

// Provider returns the active recognizer.
func (d *Detector) Provider() recognizer.Provider { return d.provider }

// Classifier returns the keyword classifier.
func (d *Detector) Classifier() *classifier.Classifier { return d.classifier }

// Metrics returns the image processor counters.
func (d *Detector) Metrics() image.ImageMetrics { return d.processor.GetMetrics() }

// Detect validates, recognizes, normalizes and classifies. The returned
// verdict is always renderable; err is non-nil when a stage failed and
// carries the typed error that chose the tag.
func (d *Detector) Detect(ctx context.Context, req Request) (types.Verdict, error) {
	in := recognizer.Input{Item: req.Item}

	if d.provider.NeedsImage() || strings.TrimSpace(req.Image) != "" {
		decoded, err := d.validator.Validate(req.Image)
		if err != nil {
			return d.fail(req, StageValidate, err)
		}
		prepared, err := d.processor.Prepare(decoded)
		if err != nil {
			return d.fail(req, StagePrepare, err)
		}
		in.Image = prepared
	}

	callCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	res, err := d.provider.Recognize(callCtx, in)
	if err != nil {
		return d.fail(req, StageRecognize, apperrors.Wrap(apperrors.KindProvider, opRecognize, types.TagAIError,
			"provider call failed", err))
	}

	label := caption.Normalize(res)
	detected := d.classifier.Classify(label)

	d.logger.Info("detection finished", utils.Fields{
		"request_id": req.RequestID,
		"provider":   d.provider.Name(),
		"label":      string(label),
		"detected":   string(detected),
		"elapsed_ms": time.Since(start).Milliseconds(),
	})

	return types.Verdict{Detected: detected, Caption: string(label)}, nil
}

func (d *Detector) fail(req Request, stage string, err error) (types.Verdict, error) {
	tag := apperrors.CodeOf(err, types.TagAIError)
	fields := utils.Fields{
		"request_id": req.RequestID,
		"stage":      stage,
		"tag":        tag,
		"error":      err.Error(),
	}
	if apperrors.IsKind(err, apperrors.KindValidation) {
		d.logger.Warn("detection rejected", fields)
	} else {
		d.logger.Error("detection failed", fields)
	}
	return types.ErrorVerdict(tag), err
}
