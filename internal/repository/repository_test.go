package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gopherai-insight/internal/model"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&model.User{}, &model.Dataset{}, &model.ChatMessage{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestDatasetRepository_RoundTripKeepsRowOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewDatasetRepository(openTestDB(t))

	row := model.NewRow()
	row.Set("name", "Alice")
	row.Set("age", "30")
	rowCount := 2
	ds := &model.Dataset{
		ID:         "ds-1",
		UserID:     7,
		Name:       "people",
		Columns:    []string{"name", "age"},
		SampleRows: []*model.Row{row},
		RowCount:   &rowCount,
	}
	if err := repo.Create(ctx, ds); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.GetByIDAndUserID(ctx, "ds-1", 7)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("expected dataset, got nil")
	}
	if len(got.SampleRows) != 1 {
		t.Fatalf("expected 1 sample row, got %d", len(got.SampleRows))
	}
	keys := model.RowKeys(got.SampleRows[0])
	if len(keys) != 2 || keys[0] != "name" || keys[1] != "age" {
		t.Fatalf("unexpected key order: %v", keys)
	}
	if v, _ := got.SampleRows[0].Get("name"); v != "Alice" {
		t.Fatalf("unexpected name value: %v", v)
	}
	if got.RowCount == nil || *got.RowCount != 2 {
		t.Fatalf("unexpected row count: %v", got.RowCount)
	}
}

func TestDatasetRepository_OwnerScoped(t *testing.T) {
	ctx := context.Background()
	repo := NewDatasetRepository(openTestDB(t))

	if err := repo.Create(ctx, &model.Dataset{ID: "ds-a", UserID: 1, Name: "a"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.GetByIDAndUserID(ctx, "ds-a", 2)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for foreign owner, got %+v", got)
	}

	if err := repo.DeleteByIDAndUserID(ctx, "ds-a", 2); err != nil {
		t.Fatalf("delete: %v", err)
	}
	list, err := repo.ListByUserID(ctx, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("foreign delete must not remove the dataset, got %d", len(list))
	}
}

func TestMessageRepository_ListByUserIDAscending(t *testing.T) {
	ctx := context.Background()
	repo := NewMessageRepository(openTestDB(t))

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		msg := &model.ChatMessage{
			ID:        fmt.Sprintf("m-%d", i),
			UserID:    3,
			Content:   fmt.Sprintf("message %d", i),
			IsUser:    i%2 == 0,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}
		if err := repo.Create(ctx, msg); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	if err := repo.Create(ctx, &model.ChatMessage{ID: "other", UserID: 4, Content: "x", CreatedAt: base}); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := repo.ListByUserID(ctx, 3, 3)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(got))
	}
	want := []string{"m-2", "m-3", "m-4"}
	for i, msg := range got {
		if msg.ID != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], msg.ID)
		}
	}
}

func TestMessageRepository_PublishWritesThrough(t *testing.T) {
	ctx := context.Background()
	repo := NewMessageRepository(openTestDB(t))

	name := "people"
	err := repo.Publish(ctx, model.ChatMessage{
		ID:             "m-1",
		UserID:         9,
		Content:        "hello",
		IsUser:         true,
		DatasetContext: &name,
		CreatedAt:      time.Now(),
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}

	got, err := repo.ListByUserID(ctx, 9, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].DatasetContext == nil || *got[0].DatasetContext != "people" {
		t.Fatalf("unexpected messages: %+v", got)
	}
}
