package config

import (
	"fmt"
)

type ChannelKeyStruct struct{}

func NewChannelKeyStruct() *ChannelKeyStruct {
	return &ChannelKeyStruct{}
}

// LectureAttendanceChannel returns the Redis PubSub channel carrying attendance marks for a lecture.
func (r *ChannelKeyStruct) LectureAttendanceChannel(lectureID int64) string {
	return fmt.Sprintf("lecture:%d:attendance", lectureID)
}

var ChannelKey = NewChannelKeyStruct()
