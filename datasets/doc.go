// Package datasets produces training data: text loaders for the libsvm and
// raw dense formats, and a seeded synthetic generator.
//
// Loaders never return a partially populated dataset. Any read or parse
// failure, including a file with fewer rows than requested, is an
// *errors.InputError naming the path and line.
package datasets
