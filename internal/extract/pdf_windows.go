//go:build windows

package extract

const pdfToTextExecutableName = "pdftotext.exe"
