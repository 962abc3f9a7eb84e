package ports

import (
	"context"

	"gopermute/domain/permutation"
)

// DatasetReader supplies datasets from tabular input. The engine only
// requires an ordered sequence of (response, group-or-covariate) pairs;
// everything else about the source format stays behind this contract.
type DatasetReader interface {
	// ReadTwoSample extracts a grouped dataset from the named columns.
	ReadTwoSample(ctx context.Context, responseCol, groupCol string) (permutation.Dataset, error)

	// ReadRegression extracts a (covariate, response) dataset from the
	// named columns.
	ReadRegression(ctx context.Context, responseCol, covariateCol string) (permutation.Dataset, error)
}
