// Package audio holds the stateless MP3 utilities that sit next to the
// harvest pipeline: tag reading, quality metrics, duration buckets and the
// waveform/spectrum plot.
package audio
