// Package classes runs the Django Jet Calm test classes one Django test invocation at a time,
// classifying each as passed, failed, timed out, or errored, and summarizing the run.
package classes
