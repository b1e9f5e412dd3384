package domain

// Job is the input contract to the pipeline: enqueue(dataset_id, url).
// The caller is responsible for creating the Dataset row with
// status=processing, meta.stage=enqueued before enqueuing.
type Job struct {
	DatasetID string
	URL       string
}
