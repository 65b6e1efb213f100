// Package archive unpacks the two archive formats the installer meets:
// Docker's static-binary tarballs (tar.gz with a single top-level
// directory of executables) and GitHub source archives (zip with a single
// top-level <repo>-<ref> directory). Both extractors strip the top-level
// directory and refuse entries that would escape the destination.
package archive
