package mode

import (
	"github.com/khaledhikmat/vs-bgremove/service/inference"
)

// TensorflowInference loads the configured frozen graph once per worker and
// records how long each load took.
func TensorflowInference(svcs ServicesFactory) InferenceFactory {
	return func(worker int) (inference.IService, error) {
		svc, stats, err := inference.NewTensorflow(inference.TensorflowOptions{
			ModelPath:    svcs.CfgSvc.GetModelPath(),
			InputTensor:  svcs.CfgSvc.GetInputTensor(),
			OutputTensor: svcs.CfgSvc.GetOutputTensor(),
		}, svcs.Logger)
		if err != nil {
			return nil, err
		}

		procStats(svcs, stats)
		return svc, nil
	}
}

// FakeInference keeps every pixel of the frame. Useful to check the camera,
// codec and window without a model.
func FakeInference(classID int32) InferenceFactory {
	return func(int) (inference.IService, error) {
		return inference.NewFake(classID), nil
	}
}
