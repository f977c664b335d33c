package types

import "time"

// Size is the spatial input size an engine expects its frames in.
type Size struct {
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`
}

type ShotClassificationAnnotation struct {
	Timestamp       time.Duration `json:"timestamp" yaml:"timestamp"`
	ClassID         int           `json:"class_id" yaml:"class_id"`
	ClassName       string        `json:"class_name" yaml:"class_name"`
	ConfidenceScore float32       `json:"confidence_score" yaml:"confidence_score"`
}
