// Package util holds small helpers shared by the HTTP and domain layers.
package util
