package inference

import (
	"context"
	"image"
	"log/slog"
	"os"
	"time"

	"gocv.io/x/gocv"
	"golang.org/x/xerrors"

	"github.com/khaledhikmat/vs-bgremove/frame"
	"github.com/khaledhikmat/vs-bgremove/model"
)

const (
	// DeepLabV3 frozen graph entry points
	DefaultInputTensor  = "ImageTensor"
	DefaultOutputTensor = "SemanticPredictions"
)

type TensorflowOptions struct {
	ModelPath    string
	InputTensor  string
	OutputTensor string
}

type tensorflowService struct {
	opts   TensorflowOptions
	net    gocv.Net
	logger *slog.Logger
}

// NewTensorflow loads a frozen TensorFlow graph through the OpenCV dnn
// module.
// WARNING: gocv.Net is not thread-safe, every worker needs its own service.
func NewTensorflow(opts TensorflowOptions, logger *slog.Logger) (IService, model.ModelStats, error) {
	if opts.InputTensor == "" {
		opts.InputTensor = DefaultInputTensor
	}
	if opts.OutputTensor == "" {
		opts.OutputTensor = DefaultOutputTensor
	}

	result := model.ModelStats{Path: opts.ModelPath, Backend: "opencv-dnn/cpu"}

	if _, err := os.Stat(opts.ModelPath); err != nil {
		return nil, result, xerrors.Errorf("%s: %v: %w", opts.ModelPath, err, model.ErrModelLoad)
	}

	start := time.Now()
	net := gocv.ReadNetFromTensorflow(opts.ModelPath)
	if net.Empty() {
		return nil, result, xerrors.Errorf("%s: no inference graph: %w", opts.ModelPath, model.ErrModelLoad)
	}

	if err := net.SetPreferableBackend(gocv.NetBackendDefault); err != nil {
		net.Close()
		return nil, result, xerrors.Errorf("%s: setting backend: %v: %w", opts.ModelPath, err, model.ErrModelLoad)
	}

	if err := net.SetPreferableTarget(gocv.NetTargetCPU); err != nil {
		net.Close()
		return nil, result, xerrors.Errorf("%s: setting target: %v: %w", opts.ModelPath, err, model.ErrModelLoad)
	}
	result.LoadTime = time.Since(start).Seconds()

	logger.Info("model loaded",
		slog.String("model", opts.ModelPath),
		slog.String("input", opts.InputTensor),
		slog.String("output", opts.OutputTensor),
		slog.String("openCV", gocv.Version()),
		slog.Float64("loadTime", result.LoadTime),
	)

	return &tensorflowService{
		opts:   opts,
		net:    net,
		logger: logger,
	}, result, nil
}

func (svc *tensorflowService) Segment(ctx context.Context, img *image.RGBA) (*frame.ClassMask, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b := img.Bounds()
	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, xerrors.Errorf("converting frame: %w", err)
	}
	defer mat.Close()

	// The Mat is BGR, the graph expects RGB.
	blob := gocv.BlobFromImage(mat, 1.0, image.Pt(b.Dx(), b.Dy()), gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	svc.net.SetInput(blob, svc.opts.InputTensor)

	output := svc.net.Forward(svc.opts.OutputTensor)
	defer output.Close()

	if output.Empty() {
		return nil, xerrors.New("empty inference output")
	}

	scores := output
	if output.Type() != gocv.MatTypeCV32F {
		scores = gocv.NewMat()
		defer scores.Close()
		output.ConvertTo(&scores, gocv.MatTypeCV32F)
	}

	data, err := scores.DataPtrFloat32()
	if err != nil {
		return nil, xerrors.Errorf("reading inference output: %w", err)
	}

	return DecodeMask(output.Size(), data)
}

func (svc *tensorflowService) Close() error {
	return svc.net.Close()
}
