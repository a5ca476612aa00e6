//go:build gocv
// +build gocv

package vision

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gocv.io/x/gocv"

	"board-finder/internal/domain/port"
)

// Enabled собрано ли с OpenCV
const Enabled = true

// GoCVInspector проверяет кадры и режет видео средствами OpenCV
type GoCVInspector struct {
	Gate QualityGate
}

// NewGoCVInspector создаёт инспектор с порогами по умолчанию.
func NewGoCVInspector() *GoCVInspector {
	return &GoCVInspector{Gate: DefaultQualityGate()}
}

// CheckFrame отбраковывает маленькие, размытые, пере- и недоэкспонированные
// кадры и кадры с бликом.
func (d *GoCVInspector) CheckFrame(ctx context.Context, imageData []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	mat, err := decodeToMat(imageData)
	if err != nil {
		return err
	}
	defer mat.Close()

	return d.checkImageQuality(mat)
}

// SampleFrames сохраняет видео во временный файл и достаёт из него
// count равномерно распределённых кадров в JPEG.
func (d *GoCVInspector) SampleFrames(ctx context.Context, videoData []byte, count int) ([][]byte, error) {
	tmp, err := os.CreateTemp("", "board-video-*.mp4")
	if err != nil {
		return nil, fmt.Errorf("create temp video: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(videoData); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp video: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("close temp video: %w", err)
	}

	vc, err := gocv.VideoCaptureFile(tmp.Name())
	if err != nil {
		return nil, fmt.Errorf("open video: %w", err)
	}
	defer vc.Close()

	total := int(vc.Get(gocv.VideoCaptureFrameCount))
	indices := evenlySpaced(total, count)
	if len(indices) == 0 {
		return nil, errors.New("video has no frames")
	}

	mat := gocv.NewMat()
	defer mat.Close()

	frames := make([][]byte, 0, len(indices))
	for _, idx := range indices {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		vc.Set(gocv.VideoCapturePosFrames, float64(idx))
		if ok := vc.Read(&mat); !ok || mat.Empty() {
			continue
		}
		buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, mat, []int{gocv.IMWriteJpegQuality, 95})
		if err != nil {
			return nil, fmt.Errorf("encode frame %d: %w", idx, err)
		}
		frames = append(frames, append([]byte(nil), buf.GetBytes()...))
		buf.Close()
	}
	if len(frames) == 0 {
		return nil, errors.New("no readable frames in video")
	}
	return frames, nil
}

// decodeToMat превращает байты изображения в gocv.Mat.
func decodeToMat(imageData []byte) (gocv.Mat, error) {
	mat, err := gocv.IMDecode(imageData, gocv.IMReadColor)
	if err == nil && !mat.Empty() {
		return mat, nil
	}
	if !mat.Empty() {
		mat.Close()
	}
	return gocv.NewMat(), errors.New("failed to decode image")
}

func (d *GoCVInspector) checkImageQuality(mat gocv.Mat) error {
	g := d.Gate
	if mat.Cols() < g.MinImageSide || mat.Rows() < g.MinImageSide {
		return fmt.Errorf("%w: image is too small (%dx%d)", ErrPoorQuality, mat.Cols(), mat.Rows())
	}

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(gray, &edges, 80, 160)
	if r := ratioOfMask(edges); r < g.MinSharpnessEdgeRatio {
		return fmt.Errorf("%w: image is blurry (edge_ratio=%.4f)", ErrPoorQuality, r)
	}

	bright := gocv.NewMat()
	defer bright.Close()
	gocv.Threshold(gray, &bright, 250, 255, gocv.ThresholdBinary)
	if r := ratioOfMask(bright); r > g.MaxOverexposedRatio {
		return fmt.Errorf("%w: overexposed image (ratio=%.4f)", ErrPoorQuality, r)
	}

	dark := gocv.NewMat()
	defer dark.Close()
	gocv.Threshold(gray, &dark, 20, 255, gocv.ThresholdBinaryInv)
	if r := ratioOfMask(dark); r > g.MaxUnderexposedRatio {
		return fmt.Errorf("%w: underexposed image (ratio=%.4f)", ErrPoorQuality, r)
	}

	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(mat, &hsv, gocv.ColorBGRToHSV)
	channels := gocv.Split(hsv)
	for i := range channels {
		defer channels[i].Close()
	}
	if len(channels) < 3 {
		return fmt.Errorf("%w: invalid hsv channels", ErrPoorQuality)
	}

	// блик: малая насыщенность при почти максимальной яркости
	lowSat := gocv.NewMat()
	defer lowSat.Close()
	gocv.Threshold(channels[1], &lowSat, 40, 255, gocv.ThresholdBinaryInv)

	highVal := gocv.NewMat()
	defer highVal.Close()
	gocv.Threshold(channels[2], &highVal, 245, 255, gocv.ThresholdBinary)

	glare := gocv.NewMat()
	defer glare.Close()
	gocv.BitwiseAnd(lowSat, highVal, &glare)
	if r := ratioOfMask(glare); r > g.MaxGlareRatio {
		return fmt.Errorf("%w: too much glare (ratio=%.4f)", ErrPoorQuality, r)
	}

	return nil
}

func ratioOfMask(mask gocv.Mat) float64 {
	total := mask.Cols() * mask.Rows()
	if total <= 0 {
		return 0
	}
	return float64(gocv.CountNonZero(mask)) / float64(total)
}

var (
	_ port.FrameInspector = (*GoCVInspector)(nil)
	_ port.FrameSampler   = (*GoCVInspector)(nil)
)
