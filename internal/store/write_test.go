package store

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestPutElement_Roundtrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	e := createTestElement("v1", "Person", 10, 20, 0, MaxTime)
	e.Properties = map[string]any{
		"name":   "Alice",
		"age":    int64(42),
		"big":    int64(1) << 60,
		"active": true,
		"tags":   []any{"a", int64(1)},
	}
	if err := s.PutElement(ctx, e); err != nil {
		t.Fatalf("PutElement() failed: %v", err)
	}

	got, err := s.GetElement(ctx, "v1")
	if err != nil {
		t.Fatalf("GetElement() failed: %v", err)
	}
	if !reflect.DeepEqual(e, got) {
		t.Errorf("GetElement() = %+v, want %+v", got, e)
	}
}

func TestPutElement_Upsert(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if err := s.PutElement(ctx, createTestElement("v1", "Person", 0, 1, 0, 1)); err != nil {
		t.Fatalf("first PutElement() failed: %v", err)
	}
	if err := s.PutElement(ctx, createTestElement("v1", "Company", 5, 6, 0, 1)); err != nil {
		t.Fatalf("second PutElement() failed: %v", err)
	}

	got, err := s.GetElement(ctx, "v1")
	if err != nil {
		t.Fatalf("GetElement() failed: %v", err)
	}
	if got.Label != "Company" || got.Valid.From != 5 {
		t.Errorf("element was not replaced: %+v", got)
	}
}

func TestPutElement_Invalid(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	testCases := []struct {
		name string
		e    Element
	}{
		{"empty id", createTestElement("", "Person", 0, 1, 0, 1)},
		{"valid interval reversed", createTestElement("v1", "Person", 5, 1, 0, 1)},
		{"tx interval reversed", createTestElement("v1", "Person", 0, 1, 9, 1)},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if err := s.PutElement(ctx, tc.e); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestPutElements_Atomic(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	err := s.PutElements(ctx, []Element{
		createTestElement("v1", "Person", 0, 1, 0, 1),
		createTestElement("v2", "Person", 3, 2, 0, 1),
	})
	if err == nil {
		t.Fatal("expected error for invalid element, got nil")
	}

	elements, err := s.ListElements(ctx)
	if err != nil {
		t.Fatalf("ListElements() failed: %v", err)
	}
	if len(elements) != 0 {
		t.Errorf("expected no elements after failed batch, got %d", len(elements))
	}
}

func TestListElements_Ordered(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	elements, err := s.ListElements(ctx)
	if err != nil {
		t.Fatalf("ListElements() failed: %v", err)
	}
	if elements == nil || len(elements) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", elements)
	}

	err = s.PutElements(ctx, []Element{
		createTestElement("v2", "Person", 0, 1, 0, 1),
		createTestElement("V3", "Person", 0, 1, 0, 1),
		createTestElement("v1", "Person", 0, 1, 0, 1),
	})
	if err != nil {
		t.Fatalf("PutElements() failed: %v", err)
	}

	elements, err = s.ListElements(ctx)
	if err != nil {
		t.Fatalf("ListElements() failed: %v", err)
	}
	var ids []string
	for _, e := range elements {
		ids = append(ids, e.ID)
	}
	want := []string{"V3", "v1", "v2"}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("ids = %v, want %v", ids, want)
	}
}

func TestGetElement_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.GetElement(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
