package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/edupulse/class-service/internal/config"
	"github.com/edupulse/class-service/internal/model"
	"github.com/redis/go-redis/v9"
)

// AttendanceFeed publishes attendance marks over Redis Pub/Sub, one channel per lecture.
type AttendanceFeed struct {
	rdb *redis.Client
}

// NewAttendanceFeed creates a new AttendanceFeed.
func NewAttendanceFeed(rdb *redis.Client) *AttendanceFeed {
	return &AttendanceFeed{rdb: rdb}
}

// PublishAttendance pushes evt to the lecture's channel.
func (f *AttendanceFeed) PublishAttendance(ctx context.Context, lectureID int64, evt model.AttendanceEvent) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal attendance event: %w", err)
	}
	return f.rdb.Publish(ctx, config.ChannelKey.LectureAttendanceChannel(lectureID), payload).Err()
}

// Subscribe opens a subscription to the lecture's channel. The caller must Close it.
func (f *AttendanceFeed) Subscribe(ctx context.Context, lectureID int64) *redis.PubSub {
	return f.rdb.Subscribe(ctx, config.ChannelKey.LectureAttendanceChannel(lectureID))
}
