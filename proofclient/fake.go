package proofclient

// FakeClient is an Enqueuer that resolves every job immediately with a
// caller-supplied bundle or error, standing in for a live proof generation
// service in tests the way contractclient.FakeClient stands in for a chain.
type FakeClient struct {
	// Bundle is returned (with its JobID set to the enqueued job's) for every
	// call, unless Err is set.
	Bundle ProofBundle
	// Err, if non-nil, is returned instead of Bundle for every call.
	Err error

	// Jobs records every job passed to Enqueue, in order, for assertions.
	Jobs []ProofJob
}

// NewFakeClient constructs a FakeClient that resolves every enqueued job with
// bundle and no error.
func NewFakeClient(bundle ProofBundle) *FakeClient {
	return &FakeClient{Bundle: bundle}
}

func (f *FakeClient) Enqueue(job ProofJob) (<-chan ProofBundleResult, error) {
	f.Jobs = append(f.Jobs, job)

	resultCh := make(chan ProofBundleResult, 1)
	if f.Err != nil {
		resultCh <- ProofBundleResult{Err: f.Err}
	} else {
		bundle := f.Bundle
		bundle.JobID = job.ID
		bundle.Circuit = job.Payload.circuitKind()
		resultCh <- ProofBundleResult{Bundle: bundle}
	}
	close(resultCh)
	return resultCh, nil
}

var _ Enqueuer = (*FakeClient)(nil)
