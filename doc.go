/*
go-gaitpose aligns gait-annotation datasets with pose-estimation keypoints
and derives Tinetti POMA gait-risk scores from the resulting keypoint
sequences.

Annotation rows carry per-frame bounding boxes authored against a video
resolution that may differ from the locally cached video files, and 1-based
frame numbers that must be converted to 0-based decode indices.  The align
package reconciles both while performing at most one whole-video pose
inference per distinct video per sequence, degrading to per-frame extraction
or deterministic placeholder keypoints when estimation is unavailable.

See the align, estimate, gait and dataset subpackages for the pipeline
stages, and cmd/gaitpose for the command line tool.
*/
package gaitpose
