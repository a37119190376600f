package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/text/encoding/unicode"
)

const (
	// FrameDelimiter 是事件流中帧与帧之间的分隔符。
	FrameDelimiter = "\n\n"
	// DefaultFramePace 是相邻两帧写出之间的人为间隔，"打字机"式客户端依赖它逐帧渲染。
	DefaultFramePace = 20 * time.Millisecond

	readBufferSize = 4 << 10
)

// Reframer 把上游任意切分的字节流重新切成以 FrameDelimiter 结尾的完整帧，
// 逐帧写给下游并在帧之间停顿 Pace。
//
// 写出的每一块要么以帧边界结尾，要么是流结束时的残余内容；
// 流结束后总会额外写一个 "\n" 作为结束标记。
type Reframer struct {
	// Pace 为帧间停顿，<=0 时不停顿。
	Pace time.Duration
	// OnFrame 可选，每写出一帧后以写出的字节数回调（用于统计）。
	OnFrame func(size int)
}

func NewReframer(pace time.Duration) *Reframer {
	return &Reframer{Pace: pace}
}

type flusher interface {
	Flush()
}

// Relay 从 src 读取直到 EOF，把重新分帧后的内容写到 dst；dst 实现 Flush 时每次写后立即刷新。
//
// 解码是有状态的：跨读边界的多字节 UTF-8 序列会被完整拼接，非法字节替换为 U+FFFD。
// 读取失败时直接返回错误且不再输出残余内容；写失败（下游断开）时结束循环并返回错误。
func (f *Reframer) Relay(ctx context.Context, dst io.Writer, src io.Reader) error {
	reader := unicode.UTF8.NewDecoder().Reader(src)
	chunk := make([]byte, readBufferSize)
	var buffer string

	for {
		n, readErr := reader.Read(chunk)
		if n > 0 {
			buffer += string(chunk[:n])
			frames := strings.Split(buffer, FrameDelimiter)
			// 最后一段可能不完整，留到下一轮。
			for _, frame := range frames[:len(frames)-1] {
				if err := f.emit(dst, frame+FrameDelimiter); err != nil {
					return err
				}
				if f.OnFrame != nil {
					f.OnFrame(len(frame) + len(FrameDelimiter))
				}
				if err := f.pause(ctx); err != nil {
					return err
				}
			}
			buffer = frames[len(frames)-1]
		}
		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				break
			}
			return fmt.Errorf("read upstream stream: %w", readErr)
		}
	}

	if buffer != "" {
		if err := f.emit(dst, buffer); err != nil {
			return err
		}
	}
	return f.emit(dst, "\n")
}

func (f *Reframer) emit(dst io.Writer, s string) error {
	if _, err := io.WriteString(dst, s); err != nil {
		return fmt.Errorf("write downstream stream: %w", err)
	}
	if fl, ok := dst.(flusher); ok {
		fl.Flush()
	}
	return nil
}

func (f *Reframer) pause(ctx context.Context) error {
	if f.Pace <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(f.Pace)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
