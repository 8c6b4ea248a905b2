package pagination

// raceDetectorEnabled is set true by race_detector_on_test.go under `go test -race`.
var raceDetectorEnabled = false
