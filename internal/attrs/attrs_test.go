// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package attrs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAttrListSet(t *testing.T) {
	tests := []struct {
		name    string
		initial AttrList
		value   string
		want    AttrList
	}{
		{
			name:  "single key",
			value: "name",
			want: AttrList{
				{Key: "name", OutputKey: "name", Include: true},
			},
		},
		{
			name:  "excluded key",
			value: "!path",
			want: AttrList{
				{Key: "path", OutputKey: "path", Include: false},
			},
		},
		{
			name:  "leading dot trimmed",
			value: ".name",
			want: AttrList{
				{Key: "name", OutputKey: "name", Include: true},
			},
		},
		{
			name:  "output key and transform",
			value: "modified:age:h",
			want: AttrList{
				{Key: "modified", OutputKey: "age", Include: true, TransformSpec: "h"},
			},
		},
		{
			name:  "multiple specs",
			value: "name,rc,!modified",
			want: AttrList{
				{Key: "name", OutputKey: "name", Include: true},
				{Key: "rc", OutputKey: "rc", Include: true},
				{Key: "modified", OutputKey: "modified", Include: false},
			},
		},
		{
			name: "existing attr updated in place",
			initial: AttrList{
				{Key: "name", OutputKey: "name", Include: true},
			},
			value: "name:package:u",
			want: AttrList{
				{Key: "name", OutputKey: "package", Include: true, TransformSpec: "u"},
			},
		},
		{
			name:  "star alone is a no-op",
			value: "*",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := tt.initial
			assert.NoError(t, a.Set(tt.value))
			assert.Equal(t, tt.want, a)
		})
	}
}

func TestAttrTransform(t *testing.T) {
	tests := []struct {
		name  string
		spec  string
		input interface{}
		want  interface{}
	}{
		{name: "no spec", spec: "", input: "value", want: "value"},
		{name: "upper", spec: "u", input: "rc", want: "RC"},
		{name: "lower", spec: "l", input: "RC", want: "rc"},
		{name: "last case wins", spec: "u,l", input: "Rc", want: "rc"},
		{name: "truncate", spec: "4", input: "release-candidate", want: "rele"},
		{name: "middle ellipsis", spec: "-8", input: "@acme/widgets", want: "@ac..ets"},
		{name: "non-string untouched", spec: "u", input: 42, want: 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attr := Attr{TransformSpec: tt.spec}
			assert.Equal(t, tt.want, attr.Transform(tt.input))
		})
	}
}

func TestAttrTransformHumanize(t *testing.T) {
	attr := Attr{TransformSpec: "h"}

	stamp := time.Now().Add(-72 * time.Hour).UTC().Format(time.RFC3339)
	got := attr.Transform(stamp)
	assert.Equal(t, "3 days ago", got)

	// Unparseable input disables the humanize spec and passes through.
	attr = Attr{TransformSpec: "h"}
	assert.Equal(t, "not-a-time", attr.Transform("not-a-time"))
	assert.Empty(t, attr.TransformSpec)
}

func TestSetGlobalTransformSpec(t *testing.T) {
	a := AttrList{}
	assert.NoError(t, a.Set("*::u,name,rc"))
	assert.NoError(t, a.SetGlobalTransformSpec())

	assert.Equal(t, "u,u", a[0].TransformSpec)
	assert.Equal(t, "u,", a[1].TransformSpec)
	assert.Equal(t, "u,", a[2].TransformSpec)
}

func TestAttrListString(t *testing.T) {
	a := AttrList{
		{Key: "name", OutputKey: "package"},
		{Key: "modified", OutputKey: "age", TransformSpec: "h"},
	}
	assert.Equal(t, "name:package:,modified:age:h", a.String())
}
