package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"edustat/domain/dataset"
)

// FigureRenderer mock
type FigureRenderer struct {
	mock.Mock
}

// RenderAll provides a mock function with given fields: ctx, records, outDir
func (_m *FigureRenderer) RenderAll(ctx context.Context, records []dataset.StudentRecord, outDir string) ([]string, error) {
	ret := _m.Called(ctx, records, outDir)

	var r0 []string
	if rf, ok := ret.Get(0).(func(context.Context, []dataset.StudentRecord, string) []string); ok {
		r0 = rf(ctx, records, outDir)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).([]string)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, []dataset.StudentRecord, string) error); ok {
		r1 = rf(ctx, records, outDir)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// Render provides a mock function with given fields: records, name, outDir
func (_m *FigureRenderer) Render(records []dataset.StudentRecord, name string, outDir string) (string, error) {
	ret := _m.Called(records, name, outDir)

	var r0 string
	if rf, ok := ret.Get(0).(func([]dataset.StudentRecord, string, string) string); ok {
		r0 = rf(records, name, outDir)
	} else {
		r0 = ret.Get(0).(string)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func([]dataset.StudentRecord, string, string) error); ok {
		r1 = rf(records, name, outDir)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}
