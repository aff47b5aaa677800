// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package expr

import (
	"sort"
)

// SourceInfo maps node ids to character offsets in the source text.
type SourceInfo struct {
	// Description names the source, for example a file path.
	Description string
	// LineOffsets holds the offset of the first character after each newline.
	LineOffsets []int32
	// Positions maps node ids to the offset of the construct they came from.
	Positions map[int64]int32
}

// NewSourceInfo computes line offsets for text.
func NewSourceInfo(location, text string) *SourceInfo {
	info := &SourceInfo{Description: location, Positions: map[int64]int32{}}
	offset := int32(0)
	for _, r := range text {
		offset++
		if r == '\n' {
			info.LineOffsets = append(info.LineOffsets, offset)
		}
	}
	return info
}

// Offset returns the recorded offset of node id.
func (s *SourceInfo) Offset(id int64) (int32, bool) {
	if s == nil {
		return 0, false
	}
	off, ok := s.Positions[id]
	return off, ok
}

// Location returns the 1-based line and 0-based column of node id.
func (s *SourceInfo) Location(id int64) (line, col int, ok bool) {
	off, ok := s.Offset(id)
	if !ok {
		return 0, 0, false
	}
	line, col = s.LineCol(off)
	return line, col, true
}

// LineCol converts a character offset into a 1-based line and a 0-based
// column.
func (s *SourceInfo) LineCol(offset int32) (line, col int) {
	i := sort.Search(len(s.LineOffsets), func(i int) bool { return s.LineOffsets[i] > offset })
	if i == 0 {
		return 1, int(offset)
	}
	return i + 1, int(offset - s.LineOffsets[i-1])
}
