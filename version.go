/*
Copyright © 2024 the IAMData authors.
This file is part of IAMData.

IAMData is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

IAMData is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with IAMData.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package iamdata prepares input data for an integrated assessment energy
// model. The subpackages project technology costs and generate materials,
// transport, and water-energy nexus parameter data, which are held in a
// scenario store. The iamutil package provides the command-line interface.
package iamdata

// Version gives the version number.
const Version = "0.1.0"
