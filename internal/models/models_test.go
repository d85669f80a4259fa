package models

import "testing"

func TestTaskSortedCoordsOrder(t *testing.T) {
	task := Task{Inputs: map[string]string{
		"C2":  Sentinel,
		"B10": Sentinel,
		"B2":  Sentinel,
	}}
	coords := task.SortedCoords()
	want := []string{"B2", "B10", "C2"}
	if len(coords) != len(want) {
		t.Fatalf("expected %d coords, got %d", len(want), len(coords))
	}
	for i, coord := range want {
		if coords[i] != coord {
			t.Fatalf("coord %d: expected %s, got %s", i, coord, coords[i])
		}
	}
}

func TestTaskFillTakesNextEmptyPair(t *testing.T) {
	task := Task{Inputs: map[string]string{
		"B5": "AB 12 JAN 24",
		"C5": "OK",
		"D5": Sentinel,
		"E5": Sentinel,
	}}
	if !task.Fill("CD 15 JAN 24", StatusNotOK) {
		t.Fatalf("expected fill to change slots")
	}
	if task.Inputs["B5"] != "AB 12 JAN 24" {
		t.Fatalf("existing stamp overwritten: %s", task.Inputs["B5"])
	}
	if task.Inputs["D5"] != "CD 15 JAN 24" {
		t.Fatalf("expected stamp in D5, got %q", task.Inputs["D5"])
	}
	if task.Inputs["E5"] != StatusNotOK {
		t.Fatalf("expected status in E5, got %q", task.Inputs["E5"])
	}
}

func TestTaskFillWithoutEmptySlots(t *testing.T) {
	task := Task{Inputs: map[string]string{"B5": "AB 12 JAN 24", "C5": "OK"}}
	if task.Fill("CD 15 JAN 24", StatusOK) {
		t.Fatalf("expected no slot change when every slot is filled")
	}
}

func TestTaskStatus(t *testing.T) {
	task := Task{Inputs: map[string]string{"B5": "AB 12 JAN 24", "C5": "not_ok"}}
	if got := task.Status(); got != StatusNotOK {
		t.Fatalf("expected NOT_OK, got %q", got)
	}
	unfilled := Task{Inputs: map[string]string{"B5": Sentinel, "C5": Sentinel}}
	if got := unfilled.Status(); got != "" {
		t.Fatalf("expected empty status, got %q", got)
	}
}

func TestCommentTasksExcludedFromCounts(t *testing.T) {
	sheets := []Sheet{{
		Name: "Sheet 1",
		Categories: []Category{{
			Name: "Fire Safety",
			Tasks: []Task{
				{Name: "Check extinguisher", Inputs: map[string]string{"B5": "AB 12 JAN 24", "C5": "OK"}},
				{Name: " Comments: ", Inputs: map[string]string{"B6": Sentinel, "C6": Sentinel}},
			},
		}},
	}}
	if got := CountTasks(sheets); got != 1 {
		t.Fatalf("expected 1 task, got %d", got)
	}
	if got := CountFilled(sheets); got != 1 {
		t.Fatalf("expected 1 filled task, got %d", got)
	}
}
