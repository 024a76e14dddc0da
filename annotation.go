package gaitpose

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// VideoMeta records the annotation space resolution, the pixel dimensions
// the bounding boxes were authored against.  This may differ from the
// resolution of the actual cached video file.
type VideoMeta struct {
	Width  int
	Height int
}

// AnnotationRow is a single parsed dataset record tying one annotated frame
// to its sequence, bounding box and source video
type AnnotationRow struct {
	// SequenceID groups rows into one physical gait trial
	SequenceID string
	// FrameNumber is the 1-based position of the annotated frame within
	// the full source video
	FrameNumber int
	// Box is the region of interest in annotation space coordinates
	Box Box
	// VideoMeta is the annotation space resolution
	VideoMeta VideoMeta
	// SourceRef is the video source reference, such as a YouTube URL.
	// May be empty for some rows.
	SourceRef string

	// passthrough metadata, unused by alignment
	GaitEvent    string
	CameraView   string
	PatternLabel string
	DatasetName  string
}

// Validate checks the row carries the fields alignment depends on
func (r *AnnotationRow) Validate() error {

	if r.SequenceID == "" {
		return fmt.Errorf("%w: row missing sequence id", ErrInvalidInput)
	}

	return r.Box.Validate()
}

// LoadAnnotations reads annotation rows from the given CSV dataset file.
// The file requires a header line naming at least sequence_id, frame_number
// and the bounding box columns, remaining columns are optional.
func LoadAnnotations(file string) ([]AnnotationRow, error) {

	f, err := os.Open(file)

	if err != nil {
		return nil, fmt.Errorf("error opening file: %w", err)
	}

	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()

	if err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	if len(records) < 1 {
		return nil, fmt.Errorf("%w: dataset file %s has no header",
			ErrInvalidInput, file)
	}

	// map header names to column positions
	cols := make(map[string]int)

	for i, name := range records[0] {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	for _, required := range []string{"sequence_id", "frame_number",
		"bbox_left", "bbox_top", "bbox_width", "bbox_height"} {

		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("%w: dataset file missing column %s",
				ErrInvalidInput, required)
		}
	}

	rows := make([]AnnotationRow, 0, len(records)-1)

	for n, rec := range records[1:] {

		row, err := parseRow(rec, cols)

		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n+2, err)
		}

		rows = append(rows, row)
	}

	return rows, nil
}

// parseRow converts one CSV record into an AnnotationRow
func parseRow(rec []string, cols map[string]int) (AnnotationRow, error) {

	var row AnnotationRow

	field := func(name string) string {
		idx, ok := cols[name]

		if !ok || idx >= len(rec) {
			return ""
		}

		return strings.TrimSpace(rec[idx])
	}

	row.SequenceID = field("sequence_id")

	frameNum, err := strconv.Atoi(field("frame_number"))

	if err != nil {
		return row, fmt.Errorf("%w: bad frame_number %q",
			ErrInvalidInput, field("frame_number"))
	}

	row.FrameNumber = frameNum

	boxVals := [4]float32{}

	for i, name := range []string{"bbox_left", "bbox_top", "bbox_width",
		"bbox_height"} {

		v, err := strconv.ParseFloat(field(name), 32)

		if err != nil {
			return row, fmt.Errorf("%w: bad %s %q", ErrInvalidInput, name,
				field(name))
		}

		boxVals[i] = float32(v)
	}

	row.Box = Box{
		Left:   boxVals[0],
		Top:    boxVals[1],
		Width:  boxVals[2],
		Height: boxVals[3],
	}

	// annotation resolution columns are optional, zero means unknown
	row.VideoMeta.Width, _ = strconv.Atoi(field("video_width"))
	row.VideoMeta.Height, _ = strconv.Atoi(field("video_height"))

	row.SourceRef = field("url")
	row.GaitEvent = field("gait_event")
	row.CameraView = field("camera_view")
	row.PatternLabel = field("gait_pattern")
	row.DatasetName = field("dataset")

	return row, nil
}

// GroupBySequence splits rows into per sequence groups.  Group order follows
// first appearance in the input, rows within a group are ordered by frame
// number using a stable sort.
func GroupBySequence(rows []AnnotationRow) [][]AnnotationRow {

	groups := make([][]AnnotationRow, 0)
	index := make(map[string]int)

	for _, row := range rows {

		i, ok := index[row.SequenceID]

		if !ok {
			i = len(groups)
			index[row.SequenceID] = i
			groups = append(groups, nil)
		}

		groups[i] = append(groups[i], row)
	}

	for _, group := range groups {
		g := group
		sort.SliceStable(g, func(a, b int) bool {
			return g[a].FrameNumber < g[b].FrameNumber
		})
	}

	return groups
}
