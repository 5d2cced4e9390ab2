package pipeline

import (
	"reflect"
	"testing"
)

func TestSelectOrder(t *testing.T) {
	got, err := selectOrder([]string{"id", "age", "group"}, []string{"group", "id"})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"group", "id"}) {
		t.Fatalf("order = %v", got)
	}
}

func TestHeadRows(t *testing.T) {
	idx, err := headRows(5, 3)
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	if !reflect.DeepEqual(idx, []int{0, 1, 2}) {
		t.Fatalf("rows = %v", idx)
	}
}

func TestGroupMeans(t *testing.T) {
	got, err := groupMeans([]string{"a", "b", "a"}, []float64{1, 5, 3})
	if err != nil {
		t.Fatalf("group: %v", err)
	}
	if !reflect.DeepEqual(got, map[string]float64{"a": 2, "b": 5}) {
		t.Fatalf("means = %v", got)
	}
	empty, err := groupMeans(nil, nil)
	if err != nil || len(empty) != 0 {
		t.Fatalf("empty = %v, %v", empty, err)
	}
}
