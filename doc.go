// Package sitepublish publishes a local static-site tree to an S3 bucket.
//
// A publish pass reconciles the bucket with the tree: files missing remotely
// are uploaded, files whose content changed are re-uploaded, and objects with
// no local counterpart are deleted. Content is compared by hashing local files
// the way S3 computes single-part ETags, so unchanged files are never sent.
//
// Key properties:
//   - A failed local scan or remote listing aborts before any mutation
//   - Every planned key is attempted once, and one key's failure never stops the rest
//   - Requests run on a bounded worker pool with an optional rate limit
//   - Include and exclude patterns apply to both sides, so excluded objects are never deleted
//
// Example usage:
//
//	client, err := sitepublish.New(sitepublish.WithRegion("eu-west-1"))
//	if err != nil {
//	    return err
//	}
//
//	report, err := client.Publish(ctx, "./public", "my-site-bucket",
//	    sitepublish.WithExclude("drafts/"),
//	)
//	if err != nil {
//	    return err
//	}
//	if report.HasFailures() {
//	    log.Printf("retry keys: %v", report.FailedKeys())
//	}
package sitepublish
