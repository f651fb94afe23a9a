// Package integrationtests runs whole grids through the application, from
// HCL files to the final summary, with instrumented runners.
package integrationtests
