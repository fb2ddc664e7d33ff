package inference

import (
	"strconv"
	"strings"

	"golang.org/x/xerrors"
)

// VOCLabels is the PASCAL VOC label set DeepLab models are trained on. The
// index of a label is its class id.
var VOCLabels = []string{
	"background",
	"aeroplane",
	"bicycle",
	"bird",
	"boat",
	"bottle",
	"bus",
	"car",
	"cat",
	"chair",
	"cow",
	"diningtable",
	"dog",
	"horse",
	"motorbike",
	"person",
	"pottedplant",
	"sheep",
	"sofa",
	"train",
	"tvmonitor",
}

func LabelName(id int32) string {
	if id < 0 || int(id) >= len(VOCLabels) {
		return "class-" + strconv.Itoa(int(id))
	}
	return VOCLabels[id]
}

// ParseClass accepts either a numeric class id or a VOC label name.
func ParseClass(s string) (int32, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, xerrors.New("empty target class")
	}

	if id, err := strconv.Atoi(s); err == nil {
		if id < 0 {
			return 0, xerrors.Errorf("negative target class %d", id)
		}
		return int32(id), nil
	}

	for i, label := range VOCLabels {
		if strings.EqualFold(label, s) {
			return int32(i), nil
		}
	}
	return 0, xerrors.Errorf("unknown target class %q", s)
}
