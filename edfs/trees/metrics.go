package trees

import "github.com/ZanzyTHEbar/embedded-dirfs/edfs/filesystem/common"

// ComputeMetrics walks the tree once and returns its size statistics.
func ComputeMetrics(root *Dir) TreeMetrics {
	var metrics TreeMetrics
	if root == nil {
		return metrics
	}
	computeTreeMetrics(root, common.Depth(root.path), &metrics)
	return metrics
}

// computeTreeMetrics recursively computes metrics starting from the given directory node.
func computeTreeMetrics(node *Dir, depth int, metrics *TreeMetrics) {
	// Include the directory node
	metrics.TotalNodes++
	metrics.TotalDirs++
	if depth > metrics.MaxDepth {
		metrics.MaxDepth = depth
	}

	for _, f := range node.files {
		metrics.TotalNodes++
		metrics.TotalFiles++
		metrics.TotalSize += f.Size()
		if depth+1 > metrics.MaxDepth {
			metrics.MaxDepth = depth + 1
		}
	}

	for _, child := range node.dirs {
		computeTreeMetrics(child, depth+1, metrics)
	}
}
