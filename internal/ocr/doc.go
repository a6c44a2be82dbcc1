// Package ocr recognizes text in scanned PDFs. Pages are rendered to images by a
// Renderer (poppler's pdftoppm by default) and read by a Recognizer (Tesseract
// through gosseract by default). Both are small interfaces so tests and
// alternative engines can be plugged in without touching the page loop.
package ocr
