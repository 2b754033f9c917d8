// ABOUTME: Audio decoding package for timeline regions and live capture
// ABOUTME: WAV/MP3/FLAC file loading plus Opus and PCM16 packet decoding
// Package decode turns encoded audio into source buffers and sample pairs.
// LoadFile handles whole-file decoding (WAV, MP3, FLAC) for timeline
// regions; OpusStream and DecodePCM16 handle packetized live capture from
// the control bridge.
package decode
