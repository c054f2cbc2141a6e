package cmd

import "github.com/ardnew/press/lang"

// Sentinel errors returned by the commands. Each is a [lang.Error], so
// attributes attached with With are logged alongside the message.
var (
	ErrOpenInput   = lang.NewError("open input file")
	ErrLoadTree    = lang.NewError("load tree document")
	ErrRender      = lang.NewError("render tree")
	ErrOutputPath  = lang.NewError("tree identity is not a local output path")
	ErrWriteOutput = lang.NewError("write output file")
	ErrUnresolved  = lang.NewError("path did not resolve")
	ErrYAMLMarshal = lang.NewError("marshal YAML")
	ErrWriteConfig = lang.NewError("write configuration file")
	ErrFileExists  = lang.NewError("file exists (use --force to overwrite)")
)
