// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package output

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortDataset(t *testing.T) {
	testData := []map[string]interface{}{
		{"name": "zebra", "count": 3.0, "tag": "rc"},
		{"name": "alpha", "count": 1.0, "tag": "latest"},
		{"name": "beta", "count": 2.0, "tag": "rc"},
	}

	tests := []struct {
		name      string
		spec      string
		wantOrder []string
	}{
		{
			name:      "ascending by name",
			spec:      "name",
			wantOrder: []string{"alpha", "beta", "zebra"},
		},
		{
			name:      "descending by name",
			spec:      "-name",
			wantOrder: []string{"zebra", "beta", "alpha"},
		},
		{
			name:      "ascending by count",
			spec:      "count",
			wantOrder: []string{"alpha", "beta", "zebra"},
		},
		{
			name:      "descending by count",
			spec:      "-count",
			wantOrder: []string{"zebra", "beta", "alpha"},
		},
		{
			name:      "case sensitive",
			spec:      "!name",
			wantOrder: []string{"alpha", "beta", "zebra"},
		},
		{
			name:      "multiple fields",
			spec:      "tag,name",
			wantOrder: []string{"alpha", "beta", "zebra"},
		},
		{
			name:      "empty spec",
			spec:      "",
			wantOrder: []string{"zebra", "alpha", "beta"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := make([]map[string]interface{}, len(testData))
			copy(data, testData)

			SortDataset(data, tt.spec)

			var gotOrder []string
			for _, row := range data {
				gotOrder = append(gotOrder, row["name"].(string))
			}
			assert.Equal(t, tt.wantOrder, gotOrder)
		})
	}
}

func TestInterfaceToString(t *testing.T) {
	tests := []struct {
		name     string
		value    interface{}
		emptyVal string
		want     string
	}{
		{name: "string", value: "hello", want: "hello"},
		{name: "int", value: 42, want: "42"},
		{name: "float", value: 42.7, want: "43"},
		{name: "bool", value: true, want: "true"},
		{name: "nil default empty", value: nil, want: ""},
		{name: "nil custom empty", value: nil, emptyVal: "-", want: "-"},
		{name: "slice", value: []string{"a", "b"}, want: `["a","b"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			if tt.emptyVal != "" {
				got = InterfaceToString(tt.value, tt.emptyVal)
			} else {
				got = InterfaceToString(tt.value)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewTag(t *testing.T) {
	tests := []struct {
		name string
		h    string
		s    string
		want Tag
	}{
		{
			name: "simple field",
			s:    "name",
			want: Tag{Kind: "attr", Name: "name"},
		},
		{
			name: "with holder",
			h:    "dist_tags",
			s:    "rc",
			want: Tag{Kind: "attr", Name: "dist_tags.rc"},
		},
		{
			name: "omitempty stripped",
			s:    "modified,omitempty",
			want: Tag{Kind: "attr", Name: "modified"},
		},
		{
			name: "excluded field",
			s:    "-",
			want: Tag{},
		},
		{
			name: "empty string",
			s:    "",
			want: Tag{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewTag(tt.h, tt.s)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDumpSchemaWalker(t *testing.T) {
	type inner struct {
		Version string `json:"version"`
	}
	type row struct {
		Name   string `json:"name"`
		Tag    string `json:"tag,omitempty"`
		Nested inner  `json:"nested"`
		Hidden string `json:"-"`
	}

	tags := DumpSchemaWalker("", reflect.TypeOf(row{}), 0)

	var names []string
	for _, tag := range tags {
		names = append(names, tag.Name)
	}
	assert.Contains(t, names, "name")
	assert.Contains(t, names, "tag")
	assert.Contains(t, names, "nested.version")
	assert.NotContains(t, names, "-")
}
