// Package edf serializes a voltage signal as an EDF+ (European Data
// Format) file. The output carries two channels: the physical signal
// and an EDF+ annotation channel holding one timekeeping TAL per data
// record. Headers are fixed-width US-ASCII; sample data is signed
// 16-bit little-endian, one record per second.
//
// Recording metadata lives in a RecordingInfo value. The zero-config
// path is DefaultRecordingInfo, which describes a KardiaMobile 1-lead
// printout sampled at 300 Hz.
package edf
