package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextStageSkipsRework(t *testing.T) {
	next, ok := NextStage(StageQualityCheck)
	require.True(t, ok)
	assert.Equal(t, StageLabeling, next, "kalite kontrolden sonra tadilat slotu atlanmalı")
}

func TestNextStageChain(t *testing.T) {
	expected := map[StageType]StageType{
		StageCutting:      StageStitching,
		StageStitching:    StageQualityCheck,
		StageQualityCheck: StageLabeling,
		StageLabeling:     StageFolding,
		StageFolding:      StagePacking,
	}
	for from, want := range expected {
		got, ok := NextStage(from)
		require.True(t, ok, "aşama: %s", from)
		assert.Equal(t, want, got)
	}
}

func TestNextStageAfterPacking(t *testing.T) {
	_, ok := NextStage(StagePacking)
	assert.False(t, ok, "paketlemeden sonra aşama yok")
}

func TestNextStageUnknown(t *testing.T) {
	_, ok := NextStage("UNKNOWN")
	assert.False(t, ok)
}

func TestIsTerminalProcessingStage(t *testing.T) {
	assert.True(t, IsTerminalProcessingStage(StageLabeling))
	assert.True(t, IsTerminalProcessingStage(StageFolding))
	assert.True(t, IsTerminalProcessingStage(StagePacking))
	assert.False(t, IsTerminalProcessingStage(StageCutting))
	assert.False(t, IsTerminalProcessingStage(StageQualityCheck))
	assert.False(t, IsTerminalProcessingStage(StageRework))
}

func TestIsReworkableStage(t *testing.T) {
	assert.True(t, IsReworkableStage(StageCutting))
	assert.True(t, IsReworkableStage(StageStitching))
	assert.False(t, IsReworkableStage(StageLabeling))
	assert.False(t, IsReworkableStage(StageQualityCheck))
}

func TestIsDefectOriginStage(t *testing.T) {
	assert.True(t, IsDefectOriginStage(StageCutting))
	assert.True(t, IsDefectOriginStage(StageStitching))
	assert.True(t, IsDefectOriginStage(StageQualityCheck))

	// kalite kontrol sonrası aşamalar ve tadilat slotu kusur üretmez
	assert.False(t, IsDefectOriginStage(StageRework))
	assert.False(t, IsDefectOriginStage(StageLabeling))
	assert.False(t, IsDefectOriginStage(StageFolding))
	assert.False(t, IsDefectOriginStage(StagePacking))
	assert.False(t, IsDefectOriginStage("UNKNOWN"))
}

func TestCanTransitionBoxStatus(t *testing.T) {
	assert.True(t, CanTransitionBoxStatus(BoxStatusPacked, BoxStatusShipped))
	assert.True(t, CanTransitionBoxStatus(BoxStatusPacked, BoxStatusDelivered))
	assert.True(t, CanTransitionBoxStatus(BoxStatusShipped, BoxStatusDelivered))

	// geri ve aynı duruma geçiş yok
	assert.False(t, CanTransitionBoxStatus(BoxStatusShipped, BoxStatusPacked))
	assert.False(t, CanTransitionBoxStatus(BoxStatusDelivered, BoxStatusShipped))
	assert.False(t, CanTransitionBoxStatus(BoxStatusPacked, BoxStatusPacked))
	assert.False(t, CanTransitionBoxStatus(BoxStatusPacked, "LOST"))
}

func TestBatchAccounting(t *testing.T) {
	b := Batch{TotalQuantity: 100, UsableQuantity: 60, DefectiveQuantity: 10}
	assert.Equal(t, 70, b.AccountedQuantity())
	assert.Equal(t, 30, b.RemainingQuantity())

	assert.False(t, b.IsClosed())
	b.Status = BatchStatusCompleted
	assert.True(t, b.IsClosed())
	b.Status = BatchStatusCancelled
	assert.True(t, b.IsClosed())
}
