package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"edustat/domain/dataset"
)

// TableReader mock
type TableReader struct {
	mock.Mock
}

// ReadTable provides a mock function with given fields: ctx, path
func (_m *TableReader) ReadTable(ctx context.Context, path string) (*dataset.Table, error) {
	ret := _m.Called(ctx, path)

	var r0 *dataset.Table
	if rf, ok := ret.Get(0).(func(context.Context, string) *dataset.Table); ok {
		r0 = rf(ctx, path)
	} else {
		if ret.Get(0) != nil {
			r0 = ret.Get(0).(*dataset.Table)
		}
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, path)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// TableWriter mock
type TableWriter struct {
	mock.Mock
}

// WriteCSV provides a mock function with given fields: ctx, path, table
func (_m *TableWriter) WriteCSV(ctx context.Context, path string, table *dataset.Table) error {
	ret := _m.Called(ctx, path, table)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, string, *dataset.Table) error); ok {
		r0 = rf(ctx, path, table)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// WriteWorkbook provides a mock function with given fields: ctx, path, sheets
func (_m *TableWriter) WriteWorkbook(ctx context.Context, path string, sheets []dataset.NamedTable) error {
	ret := _m.Called(ctx, path, sheets)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, string, []dataset.NamedTable) error); ok {
		r0 = rf(ctx, path, sheets)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}
