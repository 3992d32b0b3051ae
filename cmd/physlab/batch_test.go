package main

import (
	"reflect"
	"testing"
)

func TestParseGrid(t *testing.T) {
	tests := []struct {
		name    string
		specs   []string
		names   []string
		ranges  [][]float64
		wantErr bool
	}{
		{"single", []string{"gravity=-1.62,-9.82"}, []string{"gravity"}, [][]float64{{-1.62, -9.82}}, false},
		{"two", []string{"solver_iterations=5, 10", "max_sub_steps=4"},
			[]string{"solver_iterations", "max_sub_steps"}, [][]float64{{5, 10}, {4}}, false},
		{"no equals", []string{"gravity"}, nil, nil, true},
		{"empty list", []string{"gravity="}, nil, nil, true},
		{"bad number", []string{"gravity=1,x"}, nil, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			names, ranges, err := parseGrid(tt.specs)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if !reflect.DeepEqual(names, tt.names) || !reflect.DeepEqual(ranges, tt.ranges) {
				t.Errorf("got %v %v, want %v %v", names, ranges, tt.names, tt.ranges)
			}
		})
	}
}
