/*
Package hcldoc reads and writes graph documents as HCL.

	node "MulF32" {
	  label = "product"
	  input "F32" "lhs" {}
	  input "F32" "rhs" {
	    value = 3
	  }
	  output "F32" "result" {}
	}

	connection {
	  source {
	    node   = 0
	    socket = "value"
	  }
	  destination {
	    node    = 2
	    socket  = "terms"
	    indices = [0]
	  }
	}

Records keep their source ranges, so codec diagnostics point at the block
that caused them.
*/
package hcldoc
